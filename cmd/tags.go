package cmd

import (
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/clix"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := appInstance.TagService.ListTags(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		if len(tags) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Name", "Slug"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, t := range tags {
			table.Append([]string{strconv.FormatInt(t.ID, 10), t.Name, t.Slug})
		}
		table.Render()
		return nil
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recorded background jobs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		jobs, err := appInstance.JobService.ListJobs(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Job ID", "Task Type", "Queue", "Status", "Content ID", "Created At", "Updated At"})
		table.SetBorder(true)
		table.SetRowLine(true)
		for _, job := range jobs {
			contentID := "N/A"
			if job.RelatedEntityID != nil {
				contentID = strconv.FormatInt(*job.RelatedEntityID, 10)
			}
			table.Append([]string{
				job.JobID.String(),
				job.TaskType,
				job.Queue,
				job.Status,
				contentID,
				job.CreatedAt.Format(time.RFC3339),
				job.UpdatedAt.Format(time.RFC3339),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd, jobsCmd)
	clix.AddPaginationFlags(tagsCmd.Flags())
	clix.AddPaginationFlags(jobsCmd.Flags())
}
