// Package dialogue is the stage/confirmation engine. For each piece of
// teacher input it validates against the active stage, classifies how much
// confirmation is needed, decides the transition, and produces the response
// text. State changes are applied to a store.Store as a single patch.
package dialogue

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/narrative"
	"github.com/alexanderramin/pblcoach/internal/stage"
	"github.com/alexanderramin/pblcoach/internal/store"
)

// Response is the outcome of one engine call.
type Response struct {
	Success       bool
	Code          domain.ResponseCode
	Message       string
	Suggestions   []string
	StageComplete bool
	Level         domain.ConfirmationLevel
	// StageID is the stage the input was evaluated against.
	StageID domain.StageID
	// NextStageID is the active stage after the call.
	NextStageID domain.StageID
	State       *domain.ConversationState
}

// Engine is stateless apart from its read-only collaborators and may be
// shared across sessions.
type Engine struct {
	registry *stage.Registry
	narrator *narrative.Generator
	policy   ClassifierPolicy
	logger   *slog.Logger
}

// NewEngine wires an engine. A nil logger discards log output.
func NewEngine(registry *stage.Registry, narrator *narrative.Generator, policy ClassifierPolicy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{registry: registry, narrator: narrator, policy: policy, logger: logger}
}

// Registry returns the stage registry the engine runs over.
func (e *Engine) Registry() *stage.Registry {
	return e.registry
}

// ProcessInput evaluates raw against the active stage of st and applies
// the resulting transition. Expected user states (bad input, low
// confidence, finished session) come back as data; only registry and store
// faults are returned as errors.
func (e *Engine) ProcessInput(st *store.Store, raw string, source domain.InputSource) (Response, error) {
	state := st.State()
	if state.Terminal {
		return terminalResponse(state), nil
	}

	stg, err := e.registry.Get(state.CurrentStageID)
	if err != nil {
		return Response{}, err
	}

	attempts := state.Attempts + 1
	v := stg.Validate(raw, state.Context)
	level := e.policy.Classify(v, raw, attempts, source)

	switch {
	case !v.IsValid:
		return e.reject(st, stg, raw, v, attempts)
	case level == domain.LevelImmediate:
		return e.advance(st, stg, raw, v)
	default:
		return e.hold(st, stg, raw, level, attempts)
	}
}

// Confirm accepts the pending value of the active stage as if it had been
// classified immediate. The value is validated again first.
func (e *Engine) Confirm(st *store.Store) (Response, error) {
	state := st.State()
	if state.Terminal {
		return terminalResponse(state), nil
	}
	pc := state.PendingConfirmation
	if pc == nil {
		return Response{}, fmt.Errorf("confirm: %w", domain.ErrNoPendingConfirmation)
	}

	stg, err := e.registry.Get(state.CurrentStageID)
	if err != nil {
		return Response{}, err
	}

	v := stg.Validate(pc.PendingValue, state.Context)
	if !v.IsValid {
		return Response{
			Success:     false,
			Code:        domain.CodeValidationFailed,
			Message:     v.ErrorMessage,
			Suggestions: v.Suggestions,
			Level:       domain.LevelRefine,
			StageID:     stg.ID,
			NextStageID: stg.ID,
			State:       state,
		}, nil
	}
	return e.advance(st, stg, pc.PendingValue, v)
}

// Refine drops the pending value of the active stage and offers
// replacement phrasings. The active stage does not change.
func (e *Engine) Refine(st *store.Store) (Response, error) {
	state := st.State()
	if state.Terminal {
		return terminalResponse(state), nil
	}
	pc := state.PendingConfirmation
	if pc == nil {
		return Response{}, fmt.Errorf("refine: %w", domain.ErrNoPendingConfirmation)
	}

	if err := st.ApplyPatch(store.Patch{ClearPending: true}); err != nil {
		return Response{}, fmt.Errorf("refine: %w", err)
	}
	return Response{
		Success:     true,
		Message:     e.narrator.Review(domain.LevelRefine, pc.PendingValue, state.Context),
		Suggestions: e.narrator.Refinements(state.CurrentStageID, pc.PendingValue, state.Context),
		Level:       domain.LevelRefine,
		StageID:     state.CurrentStageID,
		NextStageID: state.CurrentStageID,
		State:       st.State(),
	}, nil
}

// NavigateToStage moves the session to stageID without validation. It is
// an operator escape hatch: completed stages are left as they are, so the
// completed list may no longer be a prefix of the visited path.
func (e *Engine) NavigateToStage(st *store.Store, stageID domain.StageID) error {
	if _, err := e.registry.Get(stageID); err != nil {
		return err
	}
	from := st.State().CurrentStageID

	zero, notTerminal := 0, false
	if err := st.ApplyPatch(store.Patch{
		CurrentStageID: &stageID,
		ClearPending:   true,
		Attempts:       &zero,
		Terminal:       &notTerminal,
	}); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	e.logger.Warn("stage navigation bypassed validation",
		"session_id", st.SessionID(),
		"from", string(from),
		"to", string(stageID),
	)
	return nil
}

// StagePrompt returns the question to show when stageID becomes active.
func (e *Engine) StagePrompt(stageID domain.StageID, ctx domain.ProjectContext) (string, error) {
	if _, err := e.registry.Get(stageID); err != nil {
		return "", err
	}
	return e.narrator.Prompt(stageID, ctx)
}

// reject holds raw in refine mode, replacing any earlier pending value. A
// suggestion classifies immediate, but invalid input is never passed.
func (e *Engine) reject(st *store.Store, stg stage.Stage, raw string, v domain.ValidationResult, attempts int) (Response, error) {
	if err := st.ApplyPatch(store.Patch{
		Attempts: &attempts,
		Pending: &domain.PendingConfirmation{
			StageID:      stg.ID,
			PendingValue: raw,
			Mode:         domain.LevelRefine,
			Attempts:     attempts,
		},
	}); err != nil {
		return Response{}, fmt.Errorf("recording rejected input: %w", err)
	}

	return Response{
		Success:     false,
		Code:        domain.CodeValidationFailed,
		Message:     v.ErrorMessage,
		Suggestions: v.Suggestions,
		Level:       domain.LevelRefine,
		StageID:     stg.ID,
		NextStageID: stg.ID,
		State:       st.State(),
	}, nil
}

func (e *Engine) hold(st *store.Store, stg stage.Stage, raw string, level domain.ConfirmationLevel, attempts int) (Response, error) {
	if err := st.ApplyPatch(store.Patch{
		Attempts: &attempts,
		Pending: &domain.PendingConfirmation{
			StageID:      stg.ID,
			PendingValue: raw,
			Mode:         level,
			Attempts:     attempts,
		},
	}); err != nil {
		return Response{}, fmt.Errorf("holding input for confirmation: %w", err)
	}

	state := st.State()
	resp := Response{
		Success:     true,
		Message:     e.narrator.Review(level, raw, state.Context),
		Level:       level,
		StageID:     stg.ID,
		NextStageID: stg.ID,
		State:       state,
	}
	if level == domain.LevelRefine {
		resp.Suggestions = e.narrator.Refinements(stg.ID, raw, state.Context)
	}
	return resp, nil
}

func (e *Engine) advance(st *store.Store, stg stage.Stage, raw string, v domain.ValidationResult) (Response, error) {
	value := strings.TrimSpace(raw)
	zero := 0
	patch := store.Patch{
		CompleteStages: []domain.StageID{stg.ID},
		ClearPending:   true,
		Attempts:       &zero,
	}
	if v.CaptureData && v.DataKey != "" {
		patch.ProjectData = map[string]string{v.DataKey: value}
		if domain.IsContextKey(v.DataKey) {
			patch.ContextFields = map[string]string{v.DataKey: value}
		}
	}
	if stg.IsLast() {
		terminal := true
		patch.Terminal = &terminal
	} else {
		next := stg.Next
		patch.CurrentStageID = &next
	}

	if err := st.ApplyPatch(patch); err != nil {
		return Response{}, fmt.Errorf("advancing from %s: %w", stg.ID, err)
	}

	state := st.State()
	msg := e.narrator.Acknowledge(stg.ID, value, state.Context, stg.IsLast())
	if !stg.IsLast() {
		prompt, err := e.narrator.Prompt(stg.Next, state.Context)
		if err != nil {
			return Response{}, err
		}
		msg += "\n\n" + prompt
	}

	return Response{
		Success:       true,
		Message:       msg,
		Suggestions:   v.Suggestions,
		StageComplete: true,
		Level:         domain.LevelImmediate,
		StageID:       stg.ID,
		NextStageID:   state.CurrentStageID,
		State:         state,
	}, nil
}

func terminalResponse(state *domain.ConversationState) Response {
	v := stage.SessionComplete()
	return Response{
		Success:     false,
		Code:        domain.CodeSessionTerminal,
		Message:     v.ErrorMessage,
		Suggestions: v.Suggestions,
		Level:       domain.LevelRefine,
		StageID:     state.CurrentStageID,
		NextStageID: state.CurrentStageID,
		State:       state,
	}
}
