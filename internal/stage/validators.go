package stage

import (
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// Length thresholds, measured in runes on trimmed input.
// These are simple heuristics, not semantic checks.
const (
	MinContextLength           = 6
	MinBigIdeaLength           = 10
	MinEssentialQuestionLength = 15
	MinChallengeLength         = 20
	MinJourneyLength           = 20
	MinDeliverablesLength      = 10
)

// ActionVerbs is the allow-list a challenge must mention at least one of.
var ActionVerbs = []string{"create", "design", "solve", "build", "develop"}

// contextTriggers maps keywords in context input to the field they fill.
// Checked in order; the first hit wins.
var contextTriggers = []struct {
	keywords []string
	key      string
}{
	{[]string{"subject"}, domain.KeySubject},
	{[]string{"grade", "student"}, domain.KeyGradeLevel},
	{[]string{"week", "month", "semester", "day"}, domain.KeyDuration},
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateContext accepts anything of useful length and captures it into
// the context field its keywords point at.
func ValidateContext(input string, ctx domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if length(trimmed) < MinContextLength {
		return domain.Invalid(
			"Tell me a little more about your classroom so I can tailor the project.",
			"I teach 7th grade science",
			"The subject is environmental studies",
			"We have about 6 weeks for this unit",
		)
	}

	lower := strings.ToLower(trimmed)
	for _, trig := range contextTriggers {
		for _, kw := range trig.keywords {
			if strings.Contains(lower, kw) {
				return domain.Valid(trig.key, contextFollowUps(ctx, trig.key)...)
			}
		}
	}
	return domain.Valid("", contextFollowUps(ctx, "")...)
}

// contextFollowUps lists prompts for context fields still missing after
// the field named by filled is captured.
func contextFollowUps(ctx domain.ProjectContext, filled string) []string {
	var out []string
	if ctx.Subject == "" && filled != domain.KeySubject {
		out = append(out, "What subject will this project live in?")
	}
	if ctx.GradeLevel == "" && filled != domain.KeyGradeLevel {
		out = append(out, "What grade level are your students?")
	}
	if ctx.Duration == "" && filled != domain.KeyDuration {
		out = append(out, "How many weeks do you have for the unit?")
	}
	return out
}

// ValidateBigIdea rejects thin themes and questions, which belong to the
// essential question stage.
func ValidateBigIdea(input string, _ domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if length(trimmed) < MinBigIdeaLength {
		return domain.Invalid(
			"That's a bit thin for a Big Idea. Try a broader theme that connects to your students' world.",
			"Communities shape and are shaped by their environment",
			"Systems depend on balance between their parts",
			"Stories help us understand who we are",
		)
	}
	if strings.Contains(trimmed, "?") {
		return domain.Invalid(
			"That sounds like an Essential Question. A Big Idea is a theme stated as a statement; we'll get to the question next.",
			"Turn your question into a statement about the underlying concept",
			"Change over time drives how societies adapt",
			"Energy flows through every living system",
		)
	}
	return domain.Valid(domain.KeyBigIdea)
}

// ValidateEssentialQuestion requires an open question of useful length.
func ValidateEssentialQuestion(input string, _ domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if !strings.Contains(trimmed, "?") || length(trimmed) < MinEssentialQuestionLength {
		return domain.Invalid(
			"An Essential Question should be an open-ended question with no single right answer, and it should end in a question mark.",
			"Start with \"How might we...\" or \"Why does...\"",
			"How can our community become more sustainable?",
			"What makes a place worth protecting?",
		)
	}
	return domain.Valid(domain.KeyEssentialQuestion)
}

// ValidateChallenge requires an authentic task that names an action.
func ValidateChallenge(input string, _ domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if length(trimmed) < MinChallengeLength || !hasActionVerb(trimmed) {
		return domain.Invalid(
			"A Challenge should describe something students will actually do, using an action such as create, design, solve, build or develop.",
			"Design a campaign that reduces waste in our school",
			"Build a prototype that solves a local transportation problem",
			"Create a guide for younger students about water safety",
		)
	}
	return domain.Valid(domain.KeyChallenge)
}

func hasActionVerb(s string) bool {
	lower := strings.ToLower(s)
	for _, verb := range ActionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// ValidateJourney checks the learning journey outline by length only.
func ValidateJourney(input string, _ domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if length(trimmed) < MinJourneyLength {
		return domain.Invalid(
			"Sketch the learning journey in a sentence or two: how will students move from exploring to creating?",
			"Research the problem, interview experts, then prototype solutions",
			"Investigate, analyze data, design, test and present",
			"Start with a field visit, then build and iterate in teams",
		)
	}
	return domain.Valid(domain.KeyLearningJourney)
}

// ValidateDeliverables checks the deliverables description by length only.
func ValidateDeliverables(input string, _ domain.ProjectContext) domain.ValidationResult {
	trimmed := strings.TrimSpace(input)
	if length(trimmed) < MinDeliverablesLength {
		return domain.Invalid(
			"Describe what students will produce and who will see it.",
			"A public exhibition with prototypes and posters",
			"A written proposal presented to the city council",
			"A short documentary shared with families",
		)
	}
	return domain.Valid(domain.KeyDeliverables)
}

// SessionComplete is the response for input received after the final stage.
func SessionComplete() domain.ValidationResult {
	return domain.Invalid(
		"This design session is complete. All stages have been captured.",
		"Review your project summary",
		"Start a new design session",
	)
}
