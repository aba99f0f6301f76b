package session

import (
	"context"
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// StageStatus is one row of a session summary.
type StageStatus struct {
	ID        domain.StageID
	Name      string
	Required  bool
	Completed bool
	Current   bool
	// Values holds the captured project data for the stage, keyed by data key.
	Values map[string]string
}

// Summary is a read model of a session for display.
type Summary struct {
	SessionID string
	Terminal  bool
	Stages    []StageStatus
	Context   domain.ProjectContext
	Pending   *domain.PendingConfirmation
	UpdatedAt time.Time
}

// CompletedCount returns how many stages are marked complete.
func (s Summary) CompletedCount() int {
	n := 0
	for _, st := range s.Stages {
		if st.Completed {
			n++
		}
	}
	return n
}

// RequiredComplete reports whether every required stage is complete.
func (s Summary) RequiredComplete() bool {
	for _, st := range s.Stages {
		if st.Required && !st.Completed {
			return false
		}
	}
	return true
}

// Summary returns the stage-by-stage view of a session in registry order.
func (m *Manager) Summary(ctx context.Context, id string) (Summary, error) {
	state, err := m.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		SessionID: state.SessionID,
		Terminal:  state.Terminal,
		Context:   state.Context,
		Pending:   state.PendingConfirmation,
		UpdatedAt: state.UpdatedAt,
	}
	for _, stg := range m.engine.Registry().All() {
		row := StageStatus{
			ID:        stg.ID,
			Name:      stg.Name,
			Required:  stg.Required,
			Completed: state.HasCompleted(stg.ID),
			Current:   !state.Terminal && state.CurrentStageID == stg.ID,
			Values:    map[string]string{},
		}
		for _, key := range stg.DataKeys {
			if v, ok := state.ProjectData[key]; ok {
				row.Values[key] = v
			}
		}
		out.Stages = append(out.Stages, row)
	}
	return out, nil
}
