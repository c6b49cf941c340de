package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is ingested into a scope",
	Long: `Shows the number of stored chunks and the transcripts ingested into a scope.

Examples:
  quizrag status --course physics101
  quizrag status --lecture lec-03 --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var forgetCmd = &cobra.Command{
	Use:   "forget <source-id>...",
	Short: "Forget that transcripts were ingested into a scope",
	Long: `Clears the ingestion markers of the given transcripts so the next ingest
embeds them again. Stored chunks are kept and overwritten on re-ingestion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runForget,
}

func init() {
	addScopeFlags(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	addScopeFlags(forgetCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(forgetCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	scopeID, err := resolveScope(cmd)
	if err != nil {
		return err
	}

	p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}
	if p.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	status, err := p.Ingestion.Status(cmd.Context(), scopeID)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputStatus(cmd, status)
	return nil
}

func outputStatus(cmd *cobra.Command, status *domain.ScopeStatus) {
	cmd.Printf("Scope: %s\n", status.ScopeID)
	if !status.Exists {
		cmd.Println("Nothing ingested yet.")
		return
	}
	cmd.Printf("Chunks: %d\n", status.Records)
	cmd.Printf("Transcripts: %d\n", len(status.Sources))
	for _, m := range status.Sources {
		cmd.Printf("  %s (%s)\n", m.SourceID, m.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
}

func runForget(cmd *cobra.Command, args []string) error {
	scopeID, err := resolveScope(cmd)
	if err != nil {
		return err
	}

	p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}
	if p.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	for _, sourceID := range args {
		if err := p.Ingestion.Forget(cmd.Context(), scopeID, sourceID); err != nil {
			return fmt.Errorf("failed to forget %s: %w", sourceID, err)
		}
		cmd.Printf("Forgot %s in %s\n", sourceID, scopeID)
	}
	return nil
}
