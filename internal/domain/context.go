package domain

// ProjectContext holds the facts gathered so far in one design session.
// Every field is optional; an empty string means "not captured yet".
type ProjectContext struct {
	Subject           string `json:"subject,omitempty"`
	GradeLevel        string `json:"gradeLevel,omitempty"`
	Duration          string `json:"duration,omitempty"`
	BigIdea           string `json:"bigIdea,omitempty"`
	EssentialQuestion string `json:"essentialQuestion,omitempty"`
	Challenge         string `json:"challenge,omitempty"`
}

// Set writes value into the field named by key. It reports false when key
// does not name a context field, leaving the context unchanged.
func (c *ProjectContext) Set(key, value string) bool {
	switch key {
	case KeySubject:
		c.Subject = value
	case KeyGradeLevel:
		c.GradeLevel = value
	case KeyDuration:
		c.Duration = value
	case KeyBigIdea:
		c.BigIdea = value
	case KeyEssentialQuestion:
		c.EssentialQuestion = value
	case KeyChallenge:
		c.Challenge = value
	default:
		return false
	}
	return true
}

// Get returns the field named by key and whether key names a context field.
func (c ProjectContext) Get(key string) (string, bool) {
	switch key {
	case KeySubject:
		return c.Subject, true
	case KeyGradeLevel:
		return c.GradeLevel, true
	case KeyDuration:
		return c.Duration, true
	case KeyBigIdea:
		return c.BigIdea, true
	case KeyEssentialQuestion:
		return c.EssentialQuestion, true
	case KeyChallenge:
		return c.Challenge, true
	}
	return "", false
}

// IsContextKey reports whether key names a ProjectContext field.
func IsContextKey(key string) bool {
	_, ok := ProjectContext{}.Get(key)
	return ok
}
