package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// addScopeFlags registers the mutually exclusive scope selectors.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("scope", "", "scope id to use as is")
	cmd.Flags().String("course", "", "course id; uses the course-wide scope")
	cmd.Flags().String("lecture", "", "lecture id; uses the single-lecture scope")
	cmd.MarkFlagsMutuallyExclusive("scope", "course", "lecture")
}

// resolveScope returns the scope id selected by the scope flags.
func resolveScope(cmd *cobra.Command) (string, error) {
	scope, _ := cmd.Flags().GetString("scope")     //nolint:errcheck // flag registered by addScopeFlags
	course, _ := cmd.Flags().GetString("course")   //nolint:errcheck // flag registered by addScopeFlags
	lecture, _ := cmd.Flags().GetString("lecture") //nolint:errcheck // flag registered by addScopeFlags

	var scopeID string
	switch {
	case scope != "":
		scopeID = scope
	case course != "":
		scopeID = domain.CourseScope(course)
	case lecture != "":
		scopeID = domain.LectureScope(lecture)
	default:
		return "", errors.New("one of --scope, --course or --lecture is required")
	}

	if err := domain.ValidateScopeID(scopeID); err != nil {
		return "", err
	}
	return scopeID, nil
}
