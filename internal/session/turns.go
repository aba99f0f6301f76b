package session

import (
	"context"

	"github.com/alexanderramin/pblcoach/internal/dialogue"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/intelligence"
	"github.com/alexanderramin/pblcoach/internal/store"
)

// Turn is the engine response for one call with the message as shown to
// the teacher. Draft keeps the deterministic narrative text.
type Turn struct {
	dialogue.Response
	Draft       string
	CoachSource string
}

type engineCall func(st *store.Store) (resp dialogue.Response, input string, err error)

// Submit evaluates one piece of teacher input against the active stage.
func (m *Manager) Submit(ctx context.Context, id, input string, source domain.InputSource) (Turn, error) {
	return m.run(ctx, "submit", id, func(st *store.Store) (dialogue.Response, string, error) {
		resp, err := m.engine.ProcessInput(st, input, source)
		return resp, input, err
	})
}

// Confirm accepts the value waiting for confirmation.
func (m *Manager) Confirm(ctx context.Context, id string) (Turn, error) {
	return m.run(ctx, "confirm", id, func(st *store.Store) (dialogue.Response, string, error) {
		input := pendingValue(st.State())
		resp, err := m.engine.Confirm(st)
		return resp, input, err
	})
}

// Refine drops the value waiting for confirmation and returns
// alternative phrasings.
func (m *Manager) Refine(ctx context.Context, id string) (Turn, error) {
	return m.run(ctx, "refine", id, func(st *store.Store) (dialogue.Response, string, error) {
		input := pendingValue(st.State())
		resp, err := m.engine.Refine(st)
		return resp, input, err
	})
}

// Navigate jumps the session to stageID without validation and returns
// that stage's prompt. The coach is not consulted.
func (m *Manager) Navigate(ctx context.Context, id string, stageID domain.StageID) (_ Turn, err error) {
	fields, done := m.track(ctx, "navigate", id)
	defer func() { done(err) }()
	fields["to"] = string(stageID)

	resp, _, err := m.decide(ctx, id, func(st *store.Store) (dialogue.Response, string, error) {
		from := st.State().CurrentStageID
		if err := m.engine.NavigateToStage(st, stageID); err != nil {
			return dialogue.Response{}, "", err
		}
		state := st.State()
		prompt, err := m.engine.StagePrompt(stageID, state.Context)
		if err != nil {
			return dialogue.Response{}, "", err
		}
		return dialogue.Response{
			Success:     true,
			Message:     prompt,
			StageID:     from,
			NextStageID: stageID,
			State:       state,
		}, "", nil
	})
	if err != nil {
		return Turn{}, err
	}
	fields["from"] = string(resp.StageID)
	return Turn{Response: resp, Draft: resp.Message, CoachSource: intelligence.SourceDeterministic}, nil
}

func (m *Manager) run(ctx context.Context, name, id string, call engineCall) (_ Turn, err error) {
	fields, done := m.track(ctx, name, id)
	defer func() { done(err) }()

	resp, input, err := m.decide(ctx, id, call)
	if err != nil {
		return Turn{}, err
	}
	fields["stage"] = string(resp.StageID)
	fields["level"] = string(resp.Level)
	fields["stage_complete"] = resp.StageComplete
	if resp.Code != domain.CodeNone {
		fields["code"] = string(resp.Code)
	}

	turn := m.phrase(ctx, input, resp)
	fields["coach"] = turn.CoachSource
	return turn, nil
}

// decide runs call under the session lock. If persisting any patch failed
// the entry is evicted so the next call reloads the stored state.
func (m *Manager) decide(ctx context.Context, id string, call engineCall) (dialogue.Response, string, error) {
	unlock := m.lock(id)
	defer unlock()

	e, err := m.load(ctx, id)
	if err != nil {
		return dialogue.Response{}, "", err
	}

	e.ctx = ctx
	resp, input, err := call(e.store)
	e.ctx = context.Background()

	if perr := e.persistErr; perr != nil {
		m.cache.Remove(id)
		return dialogue.Response{}, "", perr
	}
	if err != nil {
		return dialogue.Response{}, "", err
	}
	return resp, input, nil
}

// phrase asks the coach to word the reply. It runs after the session lock
// is released; the decision in resp is already stored.
func (m *Manager) phrase(ctx context.Context, input string, resp dialogue.Response) Turn {
	turn := Turn{Response: resp, Draft: resp.Message, CoachSource: intelligence.SourceDeterministic}
	if resp.Code == domain.CodeSessionTerminal {
		return turn
	}

	req := intelligence.CoachRequest{
		StageID:       resp.StageID,
		Input:         input,
		Accepted:      resp.Code == domain.CodeNone,
		StageComplete: resp.StageComplete,
		Level:         resp.Level,
		Draft:         resp.Message,
	}
	if stg, err := m.engine.Registry().Get(resp.StageID); err == nil {
		req.StageName = stg.Name
	}
	if resp.State != nil {
		req.Context = resp.State.Context
	}

	reply := m.coach.Reply(ctx, req)
	turn.Message = reply.Message
	turn.CoachSource = reply.Source
	return turn
}

func pendingValue(state *domain.ConversationState) string {
	if state.PendingConfirmation == nil {
		return ""
	}
	return state.PendingConfirmation.PendingValue
}
