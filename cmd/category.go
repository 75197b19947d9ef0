package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"inkwell/internal/clix"
	"inkwell/internal/services"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	categoryKeywords string
	categoryPosition int
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Manage the category taxonomy",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category with its keywords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cat, err := appInstance.TaxonomyService.CreateCategory(cmd.Context(), services.CreateCategoryParams{
			Name:     args[0],
			Keywords: clix.SplitList(categoryKeywords),
			Position: categoryPosition,
		})
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created category %q (ID %d) with keywords: %s\n", cat.Name, cat.ID, strings.Join(cat.Keywords, ", "))
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories in classification order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cats, err := appInstance.TaxonomyService.ListCategories(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		if len(cats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No categories defined.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Name", "Position", "Keywords"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range cats {
			table.Append([]string{
				strconv.FormatInt(c.ID, 10),
				c.Name,
				strconv.Itoa(c.Position),
				strings.Join(c.Keywords, ", "),
			})
		}
		table.Render()
		return nil
	},
}

var categoryKeywordsCmd = &cobra.Command{
	Use:   "keywords <id> <keyword,...>",
	Short: "Replace the keywords of a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cat, err := appInstance.TaxonomyService.ReplaceKeywords(cmd.Context(), id, clix.SplitList(args[1]))
		if err != nil {
			return fmt.Errorf("failed to update keywords: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category %q now matches: %s\n", cat.Name, strings.Join(cat.Keywords, ", "))
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
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
		if err := appInstance.TaxonomyService.DeleteCategory(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryKeywordsCmd, categoryDeleteCmd)

	categoryAddCmd.Flags().StringVarP(&categoryKeywords, "keywords", "k", "", "Comma-separated single-word keywords")
	categoryAddCmd.Flags().IntVar(&categoryPosition, "position", 0, "Classification order; lower positions win ties")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}
