package domain

import (
	"slices"
	"time"
)

// PendingConfirmation holds an input that is waiting for the teacher to
// confirm or refine it. StageID always equals the active stage.
type PendingConfirmation struct {
	StageID      StageID
	PendingValue string
	Mode         ConfirmationLevel
	Attempts     int
}

// ConversationState is the single mutable aggregate of a design session.
// It is owned by one store; everything else works on copies.
type ConversationState struct {
	SessionID           string
	CurrentStageID      StageID
	CompletedStageIDs   []StageID
	ProjectData         map[string]string
	Context             ProjectContext
	PendingConfirmation *PendingConfirmation
	// Attempts counts inputs submitted for the active stage since it became active.
	Attempts  int
	Terminal  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversationState returns an empty state positioned at the given stage.
func NewConversationState(sessionID string, initial StageID, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID:      sessionID,
		CurrentStageID: initial,
		ProjectData:    map[string]string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy of s.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	out.CompletedStageIDs = slices.Clone(s.CompletedStageIDs)
	out.ProjectData = make(map[string]string, len(s.ProjectData))
	for k, v := range s.ProjectData {
		out.ProjectData[k] = v
	}
	if s.PendingConfirmation != nil {
		p := *s.PendingConfirmation
		out.PendingConfirmation = &p
	}
	return &out
}

// HasCompleted reports whether id is in the completed stage list.
func (s *ConversationState) HasCompleted(id StageID) bool {
	return slices.Contains(s.CompletedStageIDs, id)
}
