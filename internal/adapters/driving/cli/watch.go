package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/transcript/filesystem"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/logger"
)

var (
	watchDir   string
	watchForce bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest transcripts as they appear in a directory",
	Long: `Ingests every transcript in a directory, then keeps watching it and
ingests new transcripts as the transcription engine writes them.

Transcripts already ingested into the scope are skipped unless --force is
given, in which case every change is re-ingested. Stop with Ctrl+C.

Example:
  quizrag watch --course physics101 --dir ~/lectures/physics101`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addScopeFlags(watchCmd)
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "transcript directory to watch")
	watchCmd.Flags().BoolVarP(&watchForce, "force", "f", false, "re-ingest transcripts on every change")
	_ = watchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	scopeID, err := resolveScope(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	source := filesystem.NewSource(watchDir)
	watcher := filesystem.NewWatcher(watchDir)
	defer watcher.Close()

	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	p, err := loadPipeline(ctx)
	if err != nil {
		return err
	}
	if p.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	existing, err := readDir(ctx, source)
	if err != nil {
		return err
	}
	results, err := p.Ingestion.IngestBatch(ctx, scopeID, existing, watchForce)
	if err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	outputIngestTable(cmd, scopeID, results)

	cmd.Printf("Watching %s for new transcripts...\n", watchDir)
	for id := range events {
		text, err := source.Read(ctx, id)
		if err != nil {
			logger.Warn("reading transcript %s: %v", id, err)
			continue
		}

		result, err := p.Ingestion.Ingest(ctx, scopeID, domain.Source{ID: id, Text: text}, watchForce)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", id, err)
			continue
		}
		printWatchResult(cmd, result)
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch stopped: %w", err)
	}
	return nil
}

func printWatchResult(cmd *cobra.Command, r *domain.IngestResult) {
	if r.Skipped {
		cmd.Printf("  %s: skipped (already ingested)\n", r.SourceID)
		return
	}
	cmd.Printf("  %s: %d chunks\n", r.SourceID, r.Chunks)
}
