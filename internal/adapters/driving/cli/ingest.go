package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

var (
	ingestForce bool
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest lecture transcripts into a scope",
	Long: `Chunks, embeds and stores plain-text transcripts in a course or lecture scope.

Each path is a .txt transcript or a directory of them. The file name without
its extension is the source id. Transcripts already ingested into the scope
are skipped unless --force is given.

Examples:
  quizrag ingest --course physics101 transcripts/
  quizrag ingest --lecture lec-03 transcripts/lec-03.txt --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	addScopeFlags(ingestCmd)
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-ingest transcripts that were ingested before")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	scopeID, err := resolveScope(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sources, err := loadSources(ctx, args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return errors.New("no transcripts found")
	}

	p, err := loadPipeline(ctx)
	if err != nil {
		return err
	}
	if p.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	results, ingestErr := p.Ingestion.IngestBatch(ctx, scopeID, sources, ingestForce)

	if ingestJSON {
		if err := outputIngestJSON(cmd, results); err != nil {
			return err
		}
	} else {
		outputIngestTable(cmd, scopeID, results)
	}

	if ingestErr != nil {
		return fmt.Errorf("ingestion failed: %w", ingestErr)
	}
	return nil
}

func outputIngestJSON(cmd *cobra.Command, results []domain.IngestResult) error {
	if results == nil {
		results = []domain.IngestResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestTable(cmd *cobra.Command, scopeID string, results []domain.IngestResult) {
	cmd.Printf("Scope: %s\n", scopeID)
	total := 0
	for _, r := range results {
		if r.Skipped {
			cmd.Printf("  %s: skipped (already ingested)\n", r.SourceID)
			continue
		}
		total += r.Chunks
		cmd.Printf("  %s: %d chunks\n", r.SourceID, r.Chunks)
	}
	cmd.Printf("Ingested %d chunks from %d transcripts.\n", total, len(results))
}
