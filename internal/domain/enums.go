package domain

// StageID names one step of the unit design conversation.
type StageID string

const (
	StageContext           StageID = "context"
	StageBigIdea           StageID = "big_idea"
	StageEssentialQuestion StageID = "essential_question"
	StageChallenge         StageID = "challenge"
	StageJourney           StageID = "journey"
	StageDeliverables      StageID = "deliverables"
)

// ConfirmationLevel is how much confirmation an accepted input needs
// before the conversation moves on.
type ConfirmationLevel string

const (
	LevelImmediate ConfirmationLevel = "immediate"
	LevelReview    ConfirmationLevel = "review"
	LevelRefine    ConfirmationLevel = "refine"
)

// InputSource records where a piece of input came from.
type InputSource string

const (
	SourceTyped      InputSource = "typed"
	SourceSuggestion InputSource = "suggestion"
	SourceRefinement InputSource = "refinement"
)

// ValidInputSources is the canonical set of accepted input source strings.
var ValidInputSources = map[string]bool{
	"typed": true, "suggestion": true, "refinement": true,
}

// ParseInputSource converts a flag value into an InputSource.
// Empty input defaults to typed.
func ParseInputSource(s string) (InputSource, error) {
	if s == "" {
		return SourceTyped, nil
	}
	if !ValidInputSources[s] {
		return "", &InvalidInputSourceError{Value: s}
	}
	return InputSource(s), nil
}

// Data keys written into ProjectData by the validators.
const (
	KeySubject           = "subject"
	KeyGradeLevel        = "gradeLevel"
	KeyDuration          = "duration"
	KeyBigIdea           = "bigIdea"
	KeyEssentialQuestion = "essentialQuestion"
	KeyChallenge         = "challenge"
	KeyLearningJourney   = "learningJourney"
	KeyDeliverables      = "deliverables"
)
