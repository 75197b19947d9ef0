package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/analysis"
	"inkwell/internal/clix"
	"inkwell/internal/inputprocessor"
	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	contentTitle     string
	contentStatus    string
	contentSortBy    string
	contentSortOrder string
	contentCategory  string
	contentAsync     bool
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Store, list and re-analyze content",
}

var contentAddCmd = &cobra.Command{
	Use:   "add <input>",
	Short: "Store a file, URL, stdin (-) or literal text as analyzed content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		tags, err := clix.ParseTags(cmd.Flags())
		if err != nil {
			return err
		}

		processor := inputprocessor.New(inputprocessor.Options{
			MaxBytes: int64(appInstance.Config.Analysis.MaxInputBytes),
			Stdin:    cmd.InOrStdin(),
		})
		input, err := processor.Process(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		title := contentTitle
		if title == "" {
			title = defaultTitle(input)
		}
		if title == "" {
			return fmt.Errorf("--title is required for %s input", input.InputType)
		}

		metadata := map[string]interface{}{"input_type": input.InputType, "content_type": input.ContentType}
		if input.FilePath != nil {
			metadata["file_path"] = *input.FilePath
		}
		if input.URL != nil {
			metadata["url"] = *input.URL
		}

		item, err := appInstance.ContentService.CreateContent(ctx, services.CreateContentParams{
			Title:    title,
			Body:     input.Body,
			Status:   contentStatus,
			Metadata: metadata,
			Tags:     tags,
		})
		if err != nil {
			return fmt.Errorf("failed to add content: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added content %s: %q\n", color.GreenString("#%d", item.Content.ID), item.Content.Title)
		printContentDetail(out, item)
		return nil
	},
}

func defaultTitle(input inputprocessor.Result) string {
	switch {
	case input.FilePath != nil:
		base := filepath.Base(*input.FilePath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case input.URL != nil:
		return *input.URL
	}
	return ""
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored content",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}
		filterTags, err := clix.ParseTags(cmd.Flags())
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		results, err := appInstance.ContentService.ListContent(cmd.Context(), services.ListContentParams{
			Limit:     pagination.Limit,
			Offset:    pagination.Offset,
			SortBy:    contentSortBy,
			SortOrder: contentSortOrder,
			Tags:      filterTags,
			Category:  contentCategory,
			Status:    contentStatus,
		})
		if err != nil {
			return fmt.Errorf("failed to list content: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No content found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Title", "Status", "Category", "Words", "Min", "Tags", "Created"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, item := range results {
			table.Append([]string{
				strconv.FormatInt(item.Content.ID, 10),
				truncate(item.Content.Title, 40),
				item.Content.Status,
				item.Content.Category,
				strconv.Itoa(item.Content.WordCount),
				strconv.Itoa(item.Content.ReadingTime),
				strings.Join(tagNames(item.Tags), ", "),
				item.Content.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		fmt.Fprintf(cmd.OutOrStdout(), "Displayed %d items.\n", len(results))
		return nil
	},
}

var contentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one content item and its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		item, err := appInstance.ContentService.GetContent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get content %d: %w", id, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprintf("#%d", item.Content.ID), item.Content.Title)
		printContentDetail(out, item)
		fmt.Fprintln(out, "---")
		fmt.Fprintln(out, truncate(item.Content.Body, 500))
		return nil
	},
}

var contentReanalyzeCmd = &cobra.Command{
	Use:   "reanalyze <id>",
	Short: "Re-run analysis on stored content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if contentAsync {
			if err := appInstance.ContentService.EnqueueReanalysis(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to enqueue analysis of content %d: %w", id, err)
			}
			fmt.Fprintf(out, "Enqueued analysis of content %d.\n", id)
			return nil
		}

		content, err := appInstance.ContentService.Reanalyze(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to re-analyze content %d: %w", id, err)
		}
		fmt.Fprintf(out, "Content %d: %d words, %d min, category %s, auto-tags: %s\n",
			content.ID, content.WordCount, content.ReadingTime, content.Category, strings.Join(content.AutoTags, ", "))
		return nil
	},
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete stored content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := appInstance.ContentService.DeleteContent(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete content %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted content %d.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentAddCmd, contentListCmd, contentShowCmd, contentReanalyzeCmd, contentDeleteCmd)

	contentAddCmd.Flags().StringVarP(&contentTitle, "title", "t", "", "Title (defaults to the file name or URL)")
	contentAddCmd.Flags().StringVar(&contentStatus, "status", "", "Status: draft, published or archived (default draft)")
	contentAddCmd.Flags().String("tags", "", "Comma-separated tags to attach")

	clix.AddPaginationFlags(contentListCmd.Flags())
	contentListCmd.Flags().StringVar(&contentSortBy, "sort-by", "created_at", "Sort column (id, title, created_at, updated_at, word_count)")
	contentListCmd.Flags().StringVar(&contentSortOrder, "sort-order", "desc", "Sort order (asc, desc)")
	contentListCmd.Flags().String("tags", "", "Only items with any of these comma-separated tags")
	contentListCmd.Flags().StringVar(&contentCategory, "category", "", "Only items in this category")
	contentListCmd.Flags().StringVar(&contentStatus, "status", "", "Only items with this status")

	contentReanalyzeCmd.Flags().BoolVar(&contentAsync, "async", false, "Enqueue the analysis for the worker instead of running it now")
}

func printContentDetail(w io.Writer, item *services.ContentResultItem) {
	c := item.Content
	fmt.Fprintf(w, "Status:       %s\n", c.Status)
	fmt.Fprintf(w, "Category:     %s\n", categoryLabel(c.Category))
	fmt.Fprintf(w, "Words:        %d (%d min read)\n", c.WordCount, c.ReadingTime)
	fmt.Fprintf(w, "Auto-tags:    %s\n", strings.Join(c.AutoTags, ", "))
	fmt.Fprintf(w, "Tags:         %s\n", strings.Join(tagNames(item.Tags), ", "))
	if c.AnalyzedAt != nil {
		fmt.Fprintf(w, "Analyzed at:  %s\n", c.AnalyzedAt.Format(time.RFC3339))
	}
}

func categoryLabel(name string) string {
	if name == "" || name == analysis.Uncategorized {
		return color.YellowString(analysis.Uncategorized)
	}
	return color.GreenString(name)
}

func tagNames(tags []*models.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
