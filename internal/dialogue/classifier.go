package dialogue

import (
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// ClassifierPolicy holds the thresholds of the confirmation ladder.
// The order of the rules is fixed; only the numbers are tunable.
type ClassifierPolicy struct {
	// ImmediateMinLength: a valid first attempt longer than this is accepted immediately.
	ImmediateMinLength int
	// ReviewMaxAttempts: valid attempts up to this count ask for review, later ones for refinement.
	ReviewMaxAttempts int
}

// DefaultClassifierPolicy returns the standard thresholds (15 and 2).
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{
		ImmediateMinLength: 15,
		ReviewMaxAttempts:  2,
	}
}

// Classify maps a validation outcome to a confirmation level. attempts is
// the 1-based count of inputs for the active stage, including this one.
//
// Rules are checked in order and the first match wins:
//  1. suggestion source → immediate
//  2. invalid → refine
//  3. first attempt longer than ImmediateMinLength → immediate
//  4. attempts ≤ ReviewMaxAttempts → review
//  5. otherwise → refine
func (p ClassifierPolicy) Classify(v domain.ValidationResult, input string, attempts int, source domain.InputSource) domain.ConfirmationLevel {
	if source == domain.SourceSuggestion {
		return domain.LevelImmediate
	}
	if !v.IsValid {
		return domain.LevelRefine
	}
	if attempts == 1 && utf8.RuneCountInString(strings.TrimSpace(input)) > p.ImmediateMinLength {
		return domain.LevelImmediate
	}
	if attempts <= p.ReviewMaxAttempts {
		return domain.LevelReview
	}
	return domain.LevelRefine
}
