package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var categorizeApply bool

// categorizeCmd represents the categorize command
var categorizeCmd = &cobra.Command{
	Use:   "categorize <content-id>",
	Short: "Suggest a category and tags for stored content",
	Long: `Runs the configured categorizer (keyword or LLM) on a stored item and prints
its suggestion. With --apply the category is written back and the suggested
tags are attached.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID(args[0])
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		svc := appInstance.CategorizationService

		cats, err := svc.CategorizeStoredContent(cmd.Context(), contentID)
		if err != nil {
			return fmt.Errorf("failed to categorize content %d: %w", contentID, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Content %d\n", contentID)
		fmt.Fprintf(out, "  Category:   %s (confidence %.2f, %s)\n", categoryLabel(cats.Category), cats.Confidence, cats.Source)
		fmt.Fprintf(out, "  Tags:       %s\n", strings.Join(cats.Tags, ", "))

		if !categorizeApply {
			fmt.Fprintln(out, "Run again with --apply to store this suggestion.")
			return nil
		}
		if err := svc.ApplyCategories(cmd.Context(), contentID, cats, true); err != nil {
			return fmt.Errorf("failed to apply categories: %w", err)
		}
		fmt.Fprintln(out, "Suggestion applied.")
		return nil
	},
}

var categorizeBatchCmd = &cobra.Command{
	Use:   "batch <content-id>...",
	Short: "Categorize several stored items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		svc := appInstance.CategorizationService

		results, err := svc.BatchCategorize(cmd.Context(), ids)
		if err != nil {
			return fmt.Errorf("batch categorization failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No content could be categorized.")
			return nil
		}

		sorted := make([]int64, 0, len(results))
		for id := range results {
			sorted = append(sorted, id)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Content ID", "Category", "Tags", "Applied"})
		table.SetBorder(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, id := range sorted {
			cats := results[id]
			applied := "no"
			if categorizeApply {
				if err := svc.ApplyCategories(cmd.Context(), id, cats, true); err != nil {
					log.WithField("content_id", id).Warnf("failed to apply categories: %v", err)
					applied = "failed"
				} else {
					applied = "yes"
				}
			}
			table.Append([]string{strconv.FormatInt(id, 10), cats.Category, strings.Join(cats.Tags, ", "), applied})
		}
		table.Render()

		if skipped := len(ids) - len(results); skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d item(s) skipped; see the log for details.\n", skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeCmd.AddCommand(categorizeBatchCmd)

	categorizeCmd.PersistentFlags().BoolVar(&categorizeApply, "apply", false, "Write the suggestion back to the content")
}
