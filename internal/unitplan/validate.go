package unitplan

import (
	"fmt"
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/stage"
)

// Stages is the part of the stage registry a document is checked against.
type Stages interface {
	Has(id domain.StageID) bool
	Get(id domain.StageID) (stage.Stage, error)
}

var (
	validModes = map[string]bool{
		string(domain.LevelImmediate): true,
		string(domain.LevelReview):    true,
		string(domain.LevelRefine):    true,
	}
	validKeys = map[string]bool{
		domain.KeySubject:           true,
		domain.KeyGradeLevel:        true,
		domain.KeyDuration:          true,
		domain.KeyBigIdea:           true,
		domain.KeyEssentialQuestion: true,
		domain.KeyChallenge:         true,
		domain.KeyLearningJourney:   true,
		domain.KeyDeliverables:      true,
	}
)

// Validate checks doc against the registered stages before conversion.
// It returns every problem found, not just the first.
func Validate(doc *Document, stages Stages) []error {
	var errs []error

	if doc.Version != Version {
		errs = append(errs, fmt.Errorf("version: unsupported %d (expected %d)", doc.Version, Version))
	}

	if doc.Stage == "" {
		errs = append(errs, fmt.Errorf("current_stage is required"))
	} else if !stages.Has(domain.StageID(doc.Stage)) {
		errs = append(errs, fmt.Errorf("current_stage: unknown stage %q", doc.Stage))
	}

	seen := make(map[string]bool, len(doc.Completed))
	for i, id := range doc.Completed {
		switch {
		case !stages.Has(domain.StageID(id)):
			errs = append(errs, fmt.Errorf("completed_stages[%d]: unknown stage %q", i, id))
		case seen[id]:
			errs = append(errs, fmt.Errorf("completed_stages[%d]: %q listed twice", i, id))
		}
		seen[id] = true
	}
	errs = append(errs, validateCompleted(doc, stages)...)

	for k := range doc.Data {
		if !validKeys[k] {
			errs = append(errs, fmt.Errorf("data: unknown key %q", k))
		}
	}

	if doc.Attempts < 0 {
		errs = append(errs, fmt.Errorf("attempts: must be >= 0, got %d", doc.Attempts))
	}

	if p := doc.Pending; p != nil {
		if doc.Terminal {
			errs = append(errs, fmt.Errorf("pending: a finished session cannot hold a pending answer"))
		}
		if p.Value == "" {
			errs = append(errs, fmt.Errorf("pending.value is required"))
		}
		if !validModes[p.Mode] {
			errs = append(errs, fmt.Errorf("pending.mode: invalid %q (expected immediate, review or refine)", p.Mode))
		}
		if p.Attempts < 0 {
			errs = append(errs, fmt.Errorf("pending.attempts: must be >= 0, got %d", p.Attempts))
		}
	}

	errs = append(errs, validateTime("created_at", doc.CreatedAt)...)
	errs = append(errs, validateTime("updated_at", doc.UpdatedAt)...)
	return errs
}

// validateCompleted checks that every completed stage holds data its
// validator accepts. A stage with required capture must have a value.
func validateCompleted(doc *Document, stages Stages) []error {
	var ctx domain.ProjectContext
	for k, v := range doc.Data {
		ctx.Set(k, v)
	}

	var errs []error
	seen := make(map[string]bool, len(doc.Completed))
	for i, id := range doc.Completed {
		if seen[id] {
			continue
		}
		seen[id] = true
		stg, err := stages.Get(domain.StageID(id))
		if err != nil {
			continue
		}

		captured := false
		for _, key := range stg.DataKeys {
			value, ok := doc.Data[key]
			if !ok {
				continue
			}
			captured = true
			if v := stg.Validate(value, ctx); !v.IsValid {
				errs = append(errs, fmt.Errorf("completed_stages[%d]: data.%s %q is not accepted by %q: %s", i, key, value, id, v.ErrorMessage))
			}
		}
		if !captured && !stg.OptionalCapture && len(stg.DataKeys) > 0 {
			errs = append(errs, fmt.Errorf("completed_stages[%d]: %q is complete but data.%s is missing", i, id, stg.DataKeys[0]))
		}
	}
	return errs
}

func validateTime(field, value string) []error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return []error{fmt.Errorf("%s: invalid timestamp %q (expected RFC 3339)", field, value)}
	}
	return nil
}
