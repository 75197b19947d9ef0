package cmd

import (
	"context"
	"fmt"
	"sync"

	"inkwell/internal/clix"
	"inkwell/internal/fileingest"
	"inkwell/internal/inputprocessor"
	"inkwell/internal/services"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	importExtensions string
	importParallel   int
)

// contentImportCmd stores and analyzes every document under a directory.
var contentImportCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Recursively add every document under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}
		tags, err := clix.ParseTags(cmd.Flags())
		if err != nil {
			return err
		}

		files, err := fileingest.DiscoverFiles(ctx, dir, clix.SplitList(importExtensions))
		if err != nil {
			return fmt.Errorf("failed to discover files: %w", err)
		}
		if len(files) == 0 {
			fmt.Fprintf(out, "No documents found under %s\n", dir)
			return nil
		}
		fmt.Fprintf(out, "Discovered %d documents under %s\n", len(files), dir)

		processor := inputprocessor.New(inputprocessor.Options{MaxBytes: int64(appInstance.Config.Analysis.MaxInputBytes)})

		var (
			mu                       sync.Mutex
			successCount, errorCount int
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(importParallel, 1))
		for _, f := range files {
			f := f
			g.Go(func() error {
				line, ok := importFile(gctx, appInstance.ContentService, processor, f, tags)
				mu.Lock()
				defer mu.Unlock()
				if ok {
					successCount++
				} else {
					errorCount++
				}
				fmt.Fprintln(out, line)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nProcessed %d files: %d succeeded, %d failed\n", len(files), successCount, errorCount)
		if errorCount > 0 {
			return fmt.Errorf("%d of %d files failed to import", errorCount, len(files))
		}
		return nil
	},
}

func importFile(ctx context.Context, svc *services.ContentService, processor inputprocessor.Processor, f fileingest.FileMeta, tags []string) (string, bool) {
	input, err := processor.Process(ctx, f.Path)
	if err == nil {
		var item *services.ContentResultItem
		item, err = svc.CreateContent(ctx, services.CreateContentParams{
			Title:    f.Title(),
			Body:     input.Body,
			Metadata: map[string]interface{}{"file_path": f.Path, "content_type": input.ContentType},
			Tags:     tags,
		})
		if err == nil {
			return fmt.Sprintf("  %s #%d %s (%s)", color.GreenString("added"), item.Content.ID, f.Path, item.Content.Category), true
		}
	}
	log.WithField("path", f.Path).Debugf("import failed: %v", err)
	return fmt.Sprintf("  %s %s: %v", color.RedString("ERROR"), f.Path, err), false
}

func init() {
	contentCmd.AddCommand(contentImportCmd)

	contentImportCmd.Flags().StringVar(&importExtensions, "ext", "", "Comma-separated extensions to import (default .md,.markdown,.txt,.html,.htm)")
	contentImportCmd.Flags().IntVarP(&importParallel, "parallel", "p", 4, "Number of files analyzed at once")
	contentImportCmd.Flags().String("tags", "", "Comma-separated tags to attach to every imported item")
}
