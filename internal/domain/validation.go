package domain

// ValidationResult is the outcome of running one stage validator over one
// piece of input. It is produced fresh on every call and never stored.
type ValidationResult struct {
	IsValid      bool
	ErrorMessage string
	Suggestions  []string
	CaptureData  bool
	DataKey      string
}

// Valid returns an accepted result that captures the input under key.
// An empty key accepts without capturing.
func Valid(key string, suggestions ...string) ValidationResult {
	return ValidationResult{
		IsValid:     true,
		CaptureData: key != "",
		DataKey:     key,
		Suggestions: suggestions,
	}
}

// Invalid returns a rejected result carrying guidance for the teacher.
func Invalid(message string, suggestions ...string) ValidationResult {
	return ValidationResult{
		IsValid:      false,
		ErrorMessage: message,
		Suggestions:  suggestions,
	}
}
