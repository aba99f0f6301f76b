// Package store owns a single session's ConversationState. Every mutation
// goes through ApplyPatch, which validates invariants, applies the patch and
// then synchronously notifies subscribers with the new snapshot.
//
// A Store is not safe for concurrent use; hosts serialize calls per session.
package store

import (
	"fmt"
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// StageSet is the slice of the stage registry the store needs to check
// that the current stage is always registered.
type StageSet interface {
	Has(id domain.StageID) bool
}

// Listener receives a snapshot after every applied patch.
type Listener func(snapshot *domain.ConversationState)

// Patch describes a change to a ConversationState. Nil fields are left
// untouched.
type Patch struct {
	CurrentStageID *domain.StageID
	// CompleteStages appends ids to CompletedStageIDs, skipping ids
	// already present.
	CompleteStages []domain.StageID
	// ProjectData entries are merged into the existing map.
	ProjectData map[string]string
	// ContextFields sets ProjectContext fields by data key.
	ContextFields map[string]string
	// Pending replaces the pending confirmation. Ignored when ClearPending is set.
	Pending      *domain.PendingConfirmation
	ClearPending bool
	Attempts     *int
	Terminal     *bool
}

// IsEmpty reports whether applying p would change nothing.
func (p Patch) IsEmpty() bool {
	return p.CurrentStageID == nil && len(p.CompleteStages) == 0 &&
		len(p.ProjectData) == 0 && len(p.ContextFields) == 0 &&
		p.Pending == nil && !p.ClearPending && p.Attempts == nil &&
		p.Terminal == nil
}

type subscription struct {
	id int
	fn Listener
}

// Store is the exclusive owner of one ConversationState.
type Store struct {
	stages    StageSet
	state     *domain.ConversationState
	listeners []subscription
	nextID    int
	notifying bool
	now       func() time.Time
}

// New returns a Store owning a copy of initial. It fails if initial already
// breaks an invariant.
func New(stages StageSet, initial *domain.ConversationState) (*Store, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: nil initial state", domain.ErrInvariantViolation)
	}
	st := initial.Clone()
	if st.ProjectData == nil {
		st.ProjectData = map[string]string{}
	}
	if err := checkInvariants(stages, st); err != nil {
		return nil, err
	}
	return &Store{
		stages: stages,
		state:  st,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// SessionID returns the id of the session this store owns.
func (s *Store) SessionID() string {
	return s.state.SessionID
}

// State returns a deep copy of the current state.
func (s *Store) State() *domain.ConversationState {
	return s.state.Clone()
}

// ApplyPatch validates and applies p, then notifies listeners in
// subscription order. A patch from inside a listener is rejected with
// ErrReentrantPatch; a patch that would break an invariant is rejected with
// ErrInvariantViolation. Rejected patches change nothing.
func (s *Store) ApplyPatch(p Patch) error {
	if s.notifying {
		return domain.ErrReentrantPatch
	}
	if p.IsEmpty() {
		return nil
	}

	next := s.state.Clone()
	apply(next, p)
	next.UpdatedAt = s.now()
	if err := checkInvariants(s.stages, next); err != nil {
		return err
	}
	s.state = next

	s.notify()
	return nil
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	s.notifying = true
	defer func() { s.notifying = false }()

	subs := append([]subscription(nil), s.listeners...)
	for _, sub := range subs {
		sub.fn(s.state.Clone())
	}
}

func apply(st *domain.ConversationState, p Patch) {
	if p.CurrentStageID != nil {
		st.CurrentStageID = *p.CurrentStageID
	}
	for _, id := range p.CompleteStages {
		if !st.HasCompleted(id) {
			st.CompletedStageIDs = append(st.CompletedStageIDs, id)
		}
	}
	for k, v := range p.ProjectData {
		st.ProjectData[k] = v
	}
	for k, v := range p.ContextFields {
		st.Context.Set(k, v)
	}
	switch {
	case p.ClearPending:
		st.PendingConfirmation = nil
	case p.Pending != nil:
		pc := *p.Pending
		st.PendingConfirmation = &pc
	}
	if p.Attempts != nil {
		st.Attempts = *p.Attempts
	}
	if p.Terminal != nil {
		st.Terminal = *p.Terminal
	}
}

func checkInvariants(stages StageSet, st *domain.ConversationState) error {
	if stages != nil && !stages.Has(st.CurrentStageID) {
		return fmt.Errorf("%w: current stage %q is not registered", domain.ErrInvariantViolation, st.CurrentStageID)
	}
	seen := make(map[domain.StageID]bool, len(st.CompletedStageIDs))
	for _, id := range st.CompletedStageIDs {
		if seen[id] {
			return fmt.Errorf("%w: stage %q completed twice", domain.ErrInvariantViolation, id)
		}
		seen[id] = true
	}
	if pc := st.PendingConfirmation; pc != nil && pc.StageID != st.CurrentStageID {
		return fmt.Errorf("%w: pending confirmation for %q while %q is active",
			domain.ErrInvariantViolation, pc.StageID, st.CurrentStageID)
	}
	if st.Attempts < 0 {
		return fmt.Errorf("%w: negative attempt count", domain.ErrInvariantViolation)
	}
	for k := range st.ProjectData {
		if k == "" {
			return fmt.Errorf("%w: empty project data key", domain.ErrInvariantViolation)
		}
	}
	return nil
}
