package domain

import (
	"fmt"
	"regexp"
)

// Metric is the similarity metric of a vector scope.
type Metric string

// MetricCosine is the only metric scopes are created with.
const MetricCosine Metric = "cosine"

// maxScopeIDLength bounds scope ids so every backend accepts them as a name.
const maxScopeIDLength = 128

var scopeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ScopeConfig is fixed when a scope is created and never altered.
type ScopeConfig struct {
	Dimension int
	Metric    Metric
}

// CourseScope returns the scope id for a course-wide index.
func CourseScope(courseID string) string {
	return "course_" + courseID
}

// LectureScope returns the scope id for a single lecture index.
func LectureScope(lectureID string) string {
	return "lecture_" + lectureID
}

// ValidateScopeID checks a scope id is usable as a collection name.
func ValidateScopeID(scopeID string) error {
	if scopeID == "" {
		return fmt.Errorf("%w: scope id is required", ErrInvalidInput)
	}
	if len(scopeID) > maxScopeIDLength {
		return fmt.Errorf("%w: scope id longer than %d characters", ErrInvalidInput, maxScopeIDLength)
	}
	if !scopeIDPattern.MatchString(scopeID) {
		return fmt.Errorf("%w: scope id %q may only contain letters, digits, '_' and '-'", ErrInvalidInput, scopeID)
	}
	return nil
}
