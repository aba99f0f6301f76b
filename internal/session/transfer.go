package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexanderramin/pblcoach/internal/unitplan"
)

// InvalidPlanError lists every problem found in an imported unit plan.
type InvalidPlanError struct {
	Errs []error
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid unit plan: %v", errors.Join(e.Errs...))
}

func (e *InvalidPlanError) Unwrap() []error {
	return e.Errs
}

// Export returns the session as a portable unit plan document.
func (m *Manager) Export(ctx context.Context, id string) (*unitplan.Document, error) {
	state, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return unitplan.Export(state), nil
}

// Import stores doc as a new session and returns its id. The document is
// validated against the registry first; nothing is stored when it fails.
func (m *Manager) Import(ctx context.Context, doc *unitplan.Document) (_ string, err error) {
	id := uuid.New().String()
	fields, done := m.track(ctx, "import", id)
	defer func() { done(err) }()

	if errs := unitplan.Validate(doc, m.engine.Registry()); len(errs) > 0 {
		fields["errors"] = len(errs)
		return "", &InvalidPlanError{Errs: errs}
	}
	state := unitplan.Convert(doc, id, m.now())

	unlock := m.lock(id)
	defer unlock()

	if _, err := m.admit(state); err != nil {
		return "", err
	}
	if err := m.save(ctx, state); err != nil {
		m.cache.Remove(id)
		return "", err
	}
	fields["stage"] = string(state.CurrentStageID)
	return id, nil
}
