package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
)

// Output formats for quiz documents.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// errQuizFailed is returned after an error document has been printed.
var errQuizFailed = errors.New("quiz generation failed")

var (
	quizTopic        string
	quizNumQuestions int
	quizTopK         int
	quizSources      []string
	quizForce        bool
	quizFormat       string
	quizSave         bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz",
	Long: `Generates multiple-choice questions from the lecture content of a scope.

The topic is used as the retrieval query; the most similar transcript chunks
become the context the questions are written from. Transcripts given with
--source are ingested first, skipping any that were ingested before.

Examples:
  quizrag quiz --course physics101 --topic "entropy" -n 10
  quizrag quiz --lecture lec-03 --source transcripts/lec-03.txt --format json --save`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived quizzes",
	RunE:  runQuizList,
}

var quizShowCmd = &cobra.Command{
	Use:   "show [quiz-id]",
	Short: "Show an archived quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizShow,
}

var quizDeleteCmd = &cobra.Command{
	Use:   "delete [quiz-id]",
	Short: "Delete an archived quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizDelete,
}

func init() {
	addScopeFlags(quizCmd)
	quizCmd.Flags().StringVarP(&quizTopic, "topic", "t", "", "retrieval query (default from settings)")
	quizCmd.Flags().IntVarP(&quizNumQuestions, "num-questions", "n", 0, "number of questions (default from settings)")
	quizCmd.Flags().IntVarP(&quizTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	quizCmd.Flags().StringArrayVarP(&quizSources, "source", "s", nil, "transcript file or directory to ingest first")
	quizCmd.Flags().BoolVarP(&quizForce, "force", "f", false, "re-ingest --source transcripts")
	quizCmd.Flags().StringVarP(&quizFormat, "format", "o", formatText, "output format: text, json or yaml")
	quizCmd.Flags().BoolVar(&quizSave, "save", false, "archive the generated quiz")

	quizListCmd.Flags().String("scope", "", "only list quizzes for this scope")
	quizShowCmd.Flags().StringP("format", "o", formatText, "output format: text, json or yaml")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizDeleteCmd)
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(quizFormat); err != nil {
		return err
	}

	scopeID, err := resolveScope(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sources, err := loadSources(ctx, quizSources)
	if err != nil {
		return err
	}

	p, err := loadPipeline(ctx)
	if err != nil {
		return err
	}
	if p.Quiz == nil {
		return errors.New("quiz service not configured")
	}

	defaults := pipelineDefaults()
	req := domain.QuizRequest{
		ScopeID:      scopeID,
		Sources:      sources,
		Topic:        firstNonEmpty(quizTopic, defaults.Topic),
		NumQuestions: firstPositive(quizNumQuestions, defaults.NumQuestions),
		TopK:         firstPositive(quizTopK, defaults.TopK),
		ForceIngest:  quizForce,
	}

	doc, err := p.Quiz.GenerateQuiz(ctx, req)
	if err != nil {
		return fmt.Errorf("quiz request failed: %w", err)
	}

	if err := writeQuiz(cmd.OutOrStdout(), doc, quizFormat); err != nil {
		return err
	}

	if !doc.Succeeded() {
		return errQuizFailed
	}

	if quizSave {
		if p.Archive == nil {
			return errors.New("quiz archive not configured")
		}
		if err := p.Archive.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save quiz: %w", err)
		}
		cmd.PrintErrf("Saved quiz %s\n", doc.ID)
	}
	return nil
}

func runQuizList(cmd *cobra.Command, _ []string) error {
	archive, err := loadArchive(cmd)
	if err != nil {
		return err
	}

	scopeID, _ := cmd.Flags().GetString("scope") //nolint:errcheck // flag registered in init
	quizzes, err := archive.List(cmd.Context(), scopeID)
	if err != nil {
		return fmt.Errorf("failed to list quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		cmd.Println("No archived quizzes.")
		return nil
	}

	for i := range quizzes {
		q := &quizzes[i]
		cmd.Printf("  %s  %s  %-20s %2d questions  %s\n",
			q.ID, q.GeneratedAt.Format("2006-01-02 15:04"), q.ScopeID, len(q.Questions), q.Topic)
	}
	return nil
}

func runQuizShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag registered in init
	if err := validateFormat(format); err != nil {
		return err
	}

	archive, err := loadArchive(cmd)
	if err != nil {
		return err
	}

	doc, err := archive.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	return writeQuiz(cmd.OutOrStdout(), doc, format)
}

func runQuizDelete(cmd *cobra.Command, args []string) error {
	archive, err := loadArchive(cmd)
	if err != nil {
		return err
	}

	if err := archive.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	cmd.Printf("Deleted quiz %s\n", args[0])
	return nil
}

func loadArchive(cmd *cobra.Command) (driving.QuizArchive, error) {
	p, err := loadPipeline(cmd.Context())
	if err != nil {
		return nil, err
	}
	if p.Archive == nil {
		return nil, errors.New("quiz archive not configured")
	}
	return p.Archive, nil
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q: use text, json or yaml", format)
	}
}

// writeQuiz renders a quiz document in the requested format.
func writeQuiz(w io.Writer, doc *domain.QuizDocument, format string) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal quiz: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal quiz: %w", err)
		}
		return enc.Close()

	default:
		return writeQuizText(w, doc)
	}
}

func writeQuizText(w io.Writer, doc *domain.QuizDocument) error {
	var b strings.Builder

	if !doc.Succeeded() {
		fmt.Fprintf(&b, "Error: %s\n", doc.Message)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Quiz %s\n", doc.ID)
	fmt.Fprintf(&b, "Scope: %s\n", doc.ScopeID)
	fmt.Fprintf(&b, "Topic: %s\n", doc.Topic)
	if len(doc.Questions) < doc.NumQuestions {
		fmt.Fprintf(&b, "Note: %d of %d requested questions were generated.\n", len(doc.Questions), doc.NumQuestions)
	}

	for i, q := range doc.Questions {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, q.Question)
		for _, label := range domain.OptionLabels {
			if text := q.Options[label]; text != "" {
				fmt.Fprintf(&b, "   %s) %s\n", label, text)
			}
		}
		if q.CorrectAnswer != "" {
			fmt.Fprintf(&b, "   Answer: %s\n", q.CorrectAnswer)
		}
		if q.Explanation != "" {
			fmt.Fprintf(&b, "   Explanation: %s\n", q.Explanation)
		}
		if q.Difficulty != "" {
			fmt.Fprintf(&b, "   Difficulty: %s\n", q.Difficulty)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
