package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// SessionSummary is a lightweight listing row for a design session.
type SessionSummary struct {
	ID             string
	CurrentStageID domain.StageID
	CompletedCount int
	Terminal       bool
	Subject        string
	GradeLevel     string
	UpdatedAt      time.Time
}

// ConversationRepo persists whole ConversationState aggregates.
type ConversationRepo interface {
	// Save inserts or fully replaces the stored state for state.SessionID.
	Save(ctx context.Context, state *domain.ConversationState) error
	GetByID(ctx context.Context, id string) (*domain.ConversationState, error)
	List(ctx context.Context) ([]SessionSummary, error)
	Delete(ctx context.Context, id string) error
}
