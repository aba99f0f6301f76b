package testutil

import (
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/google/uuid"
)

// ConversationOption customizes a fixture built by NewTestConversation.
type ConversationOption func(*domain.ConversationState)

// WithID sets the session id.
func WithID(id string) ConversationOption {
	return func(s *domain.ConversationState) {
		s.SessionID = id
	}
}

// AtStage positions the conversation on id.
func AtStage(id domain.StageID) ConversationOption {
	return func(s *domain.ConversationState) {
		s.CurrentStageID = id
	}
}

// WithCompleted sets the completed stage list.
func WithCompleted(ids ...domain.StageID) ConversationOption {
	return func(s *domain.ConversationState) {
		s.CompletedStageIDs = ids
	}
}

// WithData captures key=value into ProjectData, mirroring context fields.
func WithData(key, value string) ConversationOption {
	return func(s *domain.ConversationState) {
		s.ProjectData[key] = value
		s.Context.Set(key, value)
	}
}

// WithPending sets a pending confirmation on the current stage.
func WithPending(value string, mode domain.ConfirmationLevel, attempts int) ConversationOption {
	return func(s *domain.ConversationState) {
		s.Attempts = attempts
		s.PendingConfirmation = &domain.PendingConfirmation{
			StageID:      s.CurrentStageID,
			PendingValue: value,
			Mode:         mode,
			Attempts:     attempts,
		}
	}
}

// Terminal marks the conversation finished.
func Terminal() ConversationOption {
	return func(s *domain.ConversationState) {
		s.Terminal = true
	}
}

// NewTestConversation returns a fresh state at the context stage with a
// random session id. Options run in order, so AtStage should precede
// WithPending.
func NewTestConversation(opts ...ConversationOption) *domain.ConversationState {
	now := time.Now().UTC().Truncate(time.Second)
	s := domain.NewConversationState(uuid.New().String(), domain.StageContext, now)
	for _, opt := range opts {
		opt(s)
	}
	return s
}
