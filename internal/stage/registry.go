package stage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// ErrInvalidRegistry wraps every construction failure of a Registry.
var ErrInvalidRegistry = errors.New("invalid stage registry")

// ValidatorFunc decides whether input satisfies a stage. It must be pure.
type ValidatorFunc func(input string, ctx domain.ProjectContext) domain.ValidationResult

// Stage is one immutable step of the design conversation.
// An empty Next or Previous means there is no such stage.
type Stage struct {
	ID       domain.StageID
	Name     string
	Required bool
	Validate ValidatorFunc
	Next     domain.StageID
	Previous domain.StageID

	// DataKeys are the project data keys accepted input is captured under.
	DataKeys []string
	// OptionalCapture marks a stage that may accept input without
	// capturing anything.
	OptionalCapture bool
}

// IsLast reports whether completing this stage ends the session.
func (s Stage) IsLast() bool {
	return s.Next == ""
}

// Registry is an ordered, read-only table of stages forming a single
// forward/backward chain. Safe for concurrent reads.
type Registry struct {
	byID    map[domain.StageID]Stage
	ordered []Stage
}

// NewRegistry builds a registry from stages given in any order. The first
// stage with no Previous is the initial stage. It fails on duplicate ids,
// dangling or asymmetric links, cycles, and stages unreachable from the start.
func NewRegistry(stages ...Stage) (*Registry, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrInvalidRegistry)
	}

	byID := make(map[domain.StageID]Stage, len(stages))
	for _, s := range stages {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: stage with empty id", ErrInvalidRegistry)
		}
		if s.Validate == nil {
			return nil, fmt.Errorf("%w: stage %q has no validator", ErrInvalidRegistry, s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate stage id %q", ErrInvalidRegistry, s.ID)
		}
		byID[s.ID] = s
	}

	var head *Stage
	for i := range stages {
		s := stages[i]
		if s.Next != "" {
			next, ok := byID[s.Next]
			if !ok {
				return nil, fmt.Errorf("%w: stage %q links to unknown next %q", ErrInvalidRegistry, s.ID, s.Next)
			}
			if next.Previous != s.ID {
				return nil, fmt.Errorf("%w: stage %q names %q as next but %q points back to %q",
					ErrInvalidRegistry, s.ID, s.Next, s.Next, next.Previous)
			}
		}
		if s.Previous != "" {
			prev, ok := byID[s.Previous]
			if !ok {
				return nil, fmt.Errorf("%w: stage %q links to unknown previous %q", ErrInvalidRegistry, s.ID, s.Previous)
			}
			if prev.Next != s.ID {
				return nil, fmt.Errorf("%w: stage %q names %q as previous but %q points forward to %q",
					ErrInvalidRegistry, s.ID, s.Previous, s.Previous, prev.Next)
			}
		} else if head == nil {
			head = &stages[i]
		} else {
			return nil, fmt.Errorf("%w: stages %q and %q both have no previous stage", ErrInvalidRegistry, head.ID, s.ID)
		}
	}
	if head == nil {
		return nil, fmt.Errorf("%w: no initial stage (chain is cyclic)", ErrInvalidRegistry)
	}

	ordered := make([]Stage, 0, len(stages))
	seen := make(map[domain.StageID]bool, len(stages))
	for id := head.ID; id != ""; id = byID[id].Next {
		if seen[id] {
			return nil, fmt.Errorf("%w: cycle at stage %q", ErrInvalidRegistry, id)
		}
		seen[id] = true
		ordered = append(ordered, byID[id])
	}
	if len(ordered) != len(stages) {
		return nil, fmt.Errorf("%w: %d stage(s) unreachable from %q", ErrInvalidRegistry, len(stages)-len(ordered), head.ID)
	}

	return &Registry{byID: byID, ordered: ordered}, nil
}

// Get returns the stage with the given id.
func (r *Registry) Get(id domain.StageID) (Stage, error) {
	s, ok := r.byID[id]
	if !ok {
		return Stage{}, &domain.UnknownStageError{StageID: id}
	}
	return s, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id domain.StageID) bool {
	_, ok := r.byID[id]
	return ok
}

// Initial returns the first stage of the chain.
func (r *Registry) Initial() Stage {
	return r.ordered[0]
}

// All returns the stages in chain order.
func (r *Registry) All() []Stage {
	out := make([]Stage, len(r.ordered))
	copy(out, r.ordered)
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of unit design stages.
// It panics if the built-in table is misconfigured.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultStages()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// DefaultStages returns the built-in unit design chain:
// context → big idea → essential question → challenge → journey → deliverables.
func DefaultStages() []Stage {
	return []Stage{
		{
			ID: domain.StageContext, Name: "Project Context", Required: true, OptionalCapture: true,
			Validate: ValidateContext,
			Next:     domain.StageBigIdea,
			DataKeys: []string{domain.KeySubject, domain.KeyGradeLevel, domain.KeyDuration},
		},
		{
			ID: domain.StageBigIdea, Name: "Big Idea", Required: true,
			Validate: ValidateBigIdea,
			Next:     domain.StageEssentialQuestion, Previous: domain.StageContext,
			DataKeys: []string{domain.KeyBigIdea},
		},
		{
			ID: domain.StageEssentialQuestion, Name: "Essential Question", Required: true,
			Validate: ValidateEssentialQuestion,
			Next:     domain.StageChallenge, Previous: domain.StageBigIdea,
			DataKeys: []string{domain.KeyEssentialQuestion},
		},
		{
			ID: domain.StageChallenge, Name: "Challenge", Required: true,
			Validate: ValidateChallenge,
			Next:     domain.StageJourney, Previous: domain.StageEssentialQuestion,
			DataKeys: []string{domain.KeyChallenge},
		},
		{
			ID: domain.StageJourney, Name: "Learning Journey", Required: false,
			Validate: ValidateJourney,
			Next:     domain.StageDeliverables, Previous: domain.StageChallenge,
			DataKeys: []string{domain.KeyLearningJourney},
		},
		{
			ID: domain.StageDeliverables, Name: "Deliverables", Required: false,
			Validate: ValidateDeliverables,
			Previous: domain.StageJourney,
			DataKeys: []string{domain.KeyDeliverables},
		},
	}
}
