package stage

import (
	"testing"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidators_ArePure(t *testing.T) {
	ctx := domain.ProjectContext{Subject: "science"}
	inputs := []string{
		"", "short", "technology", "How can renewable energy transform rural communities?",
		"Design a solar oven for our school garden", "I teach 8th grade students",
	}

	for _, s := range Default().All() {
		for _, in := range inputs {
			first := s.Validate(in, ctx)
			second := s.Validate(in, ctx)
			assert.Equal(t, first, second, "stage %s input %q", s.ID, in)
		}
	}
}

func TestValidators_RejectionsCarryGuidance(t *testing.T) {
	for _, s := range Default().All() {
		res := s.Validate("", domain.ProjectContext{})
		require.False(t, res.IsValid, "stage %s accepted empty input", s.ID)
		assert.NotEmpty(t, res.ErrorMessage, "stage %s", s.ID)
		assert.GreaterOrEqual(t, len(res.Suggestions), 2, "stage %s", s.ID)
		assert.LessOrEqual(t, len(res.Suggestions), 3, "stage %s", s.ID)
		assert.False(t, res.CaptureData)
	}
}

func TestValidateContext(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		capture bool
		key     string
	}{
		{"too short", "math", false, false, ""},
		{"exactly six", "abcdef", true, false, ""},
		{"subject keyword", "The subject is biology", true, true, domain.KeySubject},
		{"grade keyword", "I teach 7th grade", true, true, domain.KeyGradeLevel},
		{"student keyword", "My students are 12 years old", true, true, domain.KeyGradeLevel},
		{"duration keyword", "We have six weeks", true, true, domain.KeyDuration},
		{"no keyword", "Environmental science", true, false, ""},
		{"keyword case insensitive", "SUBJECT: history", true, true, domain.KeySubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateContext(tt.input, domain.ProjectContext{})
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Equal(t, tt.capture, res.CaptureData)
			assert.Equal(t, tt.key, res.DataKey)
		})
	}
}

func TestValidateContext_FollowUpsSkipKnownFields(t *testing.T) {
	res := ValidateContext("The subject is biology", domain.ProjectContext{GradeLevel: "7th grade"})
	require.True(t, res.IsValid)
	assert.Equal(t, []string{"How many weeks do you have for the unit?"}, res.Suggestions)
}

func TestValidateBigIdea_LengthBoundary(t *testing.T) {
	nine := ValidateBigIdea("technolog", domain.ProjectContext{})
	assert.False(t, nine.IsValid)
	assert.Contains(t, nine.ErrorMessage, "thin")

	ten := ValidateBigIdea("technology", domain.ProjectContext{})
	assert.True(t, ten.IsValid)
	assert.True(t, ten.CaptureData)
	assert.Equal(t, domain.KeyBigIdea, ten.DataKey)
}

func TestValidateBigIdea_TrimsBeforeMeasuring(t *testing.T) {
	res := ValidateBigIdea("   technolog   ", domain.ProjectContext{})
	assert.False(t, res.IsValid)
}

func TestValidateBigIdea_RedirectsQuestions(t *testing.T) {
	res := ValidateBigIdea("Why do communities change over time?", domain.ProjectContext{})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "Essential Question")
	assert.Len(t, res.Suggestions, 3)
}

func TestValidateEssentialQuestion(t *testing.T) {
	res := ValidateEssentialQuestion("How can renewable energy transform rural communities?", domain.ProjectContext{})
	assert.True(t, res.IsValid)
	assert.True(t, res.CaptureData)
	assert.Equal(t, domain.KeyEssentialQuestion, res.DataKey)

	assert.False(t, ValidateEssentialQuestion("Renewable energy transforms communities", domain.ProjectContext{}).IsValid)
	assert.False(t, ValidateEssentialQuestion("Why energy?", domain.ProjectContext{}).IsValid)
	// 15 runes including the question mark.
	assert.True(t, ValidateEssentialQuestion("What is power??", domain.ProjectContext{}).IsValid)
}

func TestValidateChallenge(t *testing.T) {
	t.Run("question without action verb", func(t *testing.T) {
		res := ValidateChallenge("Make something good?", domain.ProjectContext{})
		assert.False(t, res.IsValid)
		assert.NotEmpty(t, res.Suggestions)
		assert.Contains(t, res.ErrorMessage, "create")
	})
	t.Run("verb but too short", func(t *testing.T) {
		assert.False(t, ValidateChallenge("Build a bridge", domain.ProjectContext{}).IsValid)
	})
	t.Run("verb and length", func(t *testing.T) {
		res := ValidateChallenge("Design a water filter for the village", domain.ProjectContext{})
		assert.True(t, res.IsValid)
		assert.Equal(t, domain.KeyChallenge, res.DataKey)
	})
	t.Run("verb matching is case insensitive", func(t *testing.T) {
		assert.True(t, ValidateChallenge("DEVELOP a plan for the school garden", domain.ProjectContext{}).IsValid)
	})
}

func TestValidateJourneyAndDeliverables(t *testing.T) {
	assert.False(t, ValidateJourney("Research first", domain.ProjectContext{}).IsValid)
	journey := ValidateJourney("Research, prototype, test and present", domain.ProjectContext{})
	assert.True(t, journey.IsValid)
	assert.Equal(t, domain.KeyLearningJourney, journey.DataKey)

	assert.False(t, ValidateDeliverables("A poster", domain.ProjectContext{}).IsValid)
	deliv := ValidateDeliverables("A public exhibition", domain.ProjectContext{})
	assert.True(t, deliv.IsValid)
	assert.Equal(t, domain.KeyDeliverables, deliv.DataKey)
}

func TestSessionComplete(t *testing.T) {
	res := SessionComplete()
	assert.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "complete")
	assert.Len(t, res.Suggestions, 2)
}
