package unitplan

import (
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// Export captures state as a document.
func Export(state *domain.ConversationState) *Document {
	doc := &Document{
		Version:   Version,
		Stage:     string(state.CurrentStageID),
		Attempts:  state.Attempts,
		Terminal:  state.Terminal,
		CreatedAt: state.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: state.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, id := range state.CompletedStageIDs {
		doc.Completed = append(doc.Completed, string(id))
	}
	if len(state.ProjectData) > 0 {
		doc.Data = make(map[string]string, len(state.ProjectData))
		for k, v := range state.ProjectData {
			doc.Data[k] = v
		}
	}
	if pc := state.PendingConfirmation; pc != nil {
		doc.Pending = &PendingDoc{
			Value:    pc.PendingValue,
			Mode:     string(pc.Mode),
			Attempts: pc.Attempts,
		}
	}
	return doc
}

// Convert turns a validated document into a session state under id.
// Call Validate first; Convert assumes the document is valid. Missing
// timestamps default to now, and the context is rebuilt from data.
func Convert(doc *Document, id string, now time.Time) *domain.ConversationState {
	current := domain.StageID(doc.Stage)
	state := domain.NewConversationState(id, current, now)

	if t, err := time.Parse(time.RFC3339, doc.CreatedAt); err == nil {
		state.CreatedAt = t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, doc.UpdatedAt); err == nil {
		state.UpdatedAt = t.UTC()
	}

	for _, s := range doc.Completed {
		state.CompletedStageIDs = append(state.CompletedStageIDs, domain.StageID(s))
	}
	for k, v := range doc.Data {
		state.ProjectData[k] = v
		state.Context.Set(k, v)
	}
	state.Attempts = doc.Attempts
	state.Terminal = doc.Terminal

	if p := doc.Pending; p != nil {
		state.PendingConfirmation = &domain.PendingConfirmation{
			StageID:      current,
			PendingValue: p.Value,
			Mode:         domain.ConfirmationLevel(p.Mode),
			Attempts:     p.Attempts,
		}
	}
	return state
}
