package dialogue

import (
	"testing"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Ladder(t *testing.T) {
	valid := domain.Valid(domain.KeyBigIdea)
	invalid := domain.Invalid("no", "a", "b")
	long := "Energy shapes how communities grow" // > 15 runes
	short := "technology"                        // 10 runes

	tests := []struct {
		name     string
		v        domain.ValidationResult
		input    string
		attempts int
		source   domain.InputSource
		want     domain.ConfirmationLevel
	}{
		{"suggestion valid", valid, short, 3, domain.SourceSuggestion, domain.LevelImmediate},
		{"suggestion invalid", invalid, short, 5, domain.SourceSuggestion, domain.LevelImmediate},
		{"invalid typed first attempt", invalid, long, 1, domain.SourceTyped, domain.LevelRefine},
		{"invalid refinement", invalid, long, 1, domain.SourceRefinement, domain.LevelRefine},
		{"long valid first attempt", valid, long, 1, domain.SourceTyped, domain.LevelImmediate},
		{"short valid first attempt", valid, short, 1, domain.SourceTyped, domain.LevelReview},
		{"exactly fifteen runes first attempt", valid, "abcdefghijklmno", 1, domain.SourceTyped, domain.LevelReview},
		{"sixteen runes first attempt", valid, "abcdefghijklmnop", 1, domain.SourceTyped, domain.LevelImmediate},
		{"long valid second attempt", valid, long, 2, domain.SourceTyped, domain.LevelReview},
		{"refinement second attempt", valid, long, 2, domain.SourceRefinement, domain.LevelReview},
		{"valid third attempt", valid, long, 3, domain.SourceTyped, domain.LevelRefine},
	}

	policy := DefaultClassifierPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Classify(tt.v, tt.input, tt.attempts, tt.source))
		})
	}
}

func TestClassify_InvalidBeatsLengthRule(t *testing.T) {
	// A long first attempt that failed validation must not be treated as
	// immediate: the validity rule runs before the length rule.
	got := DefaultClassifierPolicy().Classify(domain.Invalid("x"), "a very long first attempt indeed", 1, domain.SourceTyped)
	assert.Equal(t, domain.LevelRefine, got)
}

func TestClassify_CustomThresholds(t *testing.T) {
	policy := ClassifierPolicy{ImmediateMinLength: 5, ReviewMaxAttempts: 4}
	valid := domain.Valid("")

	assert.Equal(t, domain.LevelImmediate, policy.Classify(valid, "abcdef", 1, domain.SourceTyped))
	assert.Equal(t, domain.LevelReview, policy.Classify(valid, "abcdef", 4, domain.SourceTyped))
	assert.Equal(t, domain.LevelRefine, policy.Classify(valid, "abcdef", 5, domain.SourceTyped))
}
