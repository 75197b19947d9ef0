package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inkwell/internal/analysis"
	"inkwell/internal/app"
	"inkwell/internal/inputprocessor"
	"inkwell/internal/models"
	"inkwell/internal/store/taxonomyfile"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	analyzeOffline  bool
	analyzeTaxonomy string
	analyzeExplain  bool
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "Analyze a file, URL, stdin (-) or literal text without storing it",
	Long: `Runs the analysis engine on one input and prints word count, reading time,
auto-tags and the suggested category. With --offline the taxonomy is read from
a YAML file and no database is needed.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := GetConfigFromContext(ctx)
		if err != nil {
			return err
		}

		processor := inputprocessor.New(inputprocessor.Options{
			MaxBytes: int64(cfg.Analysis.MaxInputBytes),
			Stdin:    cmd.InOrStdin(),
		})
		input, err := processor.Process(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		log.WithFields(log.Fields{"input_type": input.InputType, "content_type": input.ContentType}).Debug("input read")

		var taxonomy analysis.TaxonomyRepository
		if analyzeOffline {
			path := analyzeTaxonomy
			if path == "" {
				path = cfg.Taxonomy.File
			}
			tf, err := taxonomyfile.Load(path)
			if err != nil {
				return err
			}
			taxonomy = tf
		} else {
			appInstance, err := app.NewApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app (use --offline to analyze without a database): %w", err)
			}
			defer appInstance.Close()
			taxonomy = appInstance.CategoryStore
		}

		// Read the taxonomy once so the result and the explanation agree.
		categories, err := taxonomy.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", analysis.ErrTaxonomyUnavailable, err)
		}
		analyzer := app.NewAnalyzer(cfg, taxonomy)
		res := analyzer.Compute(input.Body, categories)

		var scores []analysis.CategoryScore
		if analyzeExplain {
			scores = analyzer.ExplainCategories(input.Body, categories)
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			return writeAnalysisJSON(out, res, scores)
		}
		renderAnalysis(out, res)
		if analyzeExplain {
			renderCategoryScores(out, scores, categories)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "Read the taxonomy from a YAML file instead of the configured store")
	analyzeCmd.Flags().StringVar(&analyzeTaxonomy, "taxonomy", "", "Taxonomy YAML file for --offline (default taxonomy.file)")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "Show the keyword score of every category")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")
}

func writeAnalysisJSON(w io.Writer, res analysis.Result, scores []analysis.CategoryScore) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if scores == nil {
		return enc.Encode(res)
	}
	return enc.Encode(struct {
		analysis.Result
		Scores []analysis.CategoryScore `json:"category_scores"`
	}{res, scores})
}

func renderAnalysis(w io.Writer, res analysis.Result) {
	category := color.GreenString(res.SuggestedCategory)
	if res.SuggestedCategory == analysis.Uncategorized {
		category = color.YellowString(res.SuggestedCategory)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	if res.Title != "" {
		table.Append([]string{"Title", res.Title})
	}
	table.Append([]string{"Words", strconv.Itoa(res.WordCount)})
	table.Append([]string{"Reading time", fmt.Sprintf("%d min", res.ReadingTime)})
	table.Append([]string{"Sentences", strconv.Itoa(res.SentenceCount)})
	table.Append([]string{"Auto-tags", strings.Join(res.AutoTags, ", ")})
	table.Append([]string{"Category", category})
	table.Render()
}

func renderCategoryScores(w io.Writer, scores []analysis.CategoryScore, categories []models.Category) {
	if len(scores) == 0 {
		fmt.Fprintln(w, "No categories defined.")
		return
	}
	keywords := make(map[string]string, len(categories))
	for _, c := range categories {
		keywords[c.Name] = strings.Join(c.Keywords, ", ")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Score", "Keywords"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range scores {
		table.Append([]string{s.Name, strconv.Itoa(s.Score), keywords[s.Name]})
	}
	table.Render()
}
