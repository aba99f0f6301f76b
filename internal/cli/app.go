package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/session"
	"github.com/alexanderramin/pblcoach/internal/stage"
	"github.com/alexanderramin/pblcoach/internal/unitplan"
)

// DesignService is the session API the commands run against.
// *session.Manager implements it.
type DesignService interface {
	Start(ctx context.Context) (session.Turn, error)
	Submit(ctx context.Context, id, input string, source domain.InputSource) (session.Turn, error)
	Confirm(ctx context.Context, id string) (session.Turn, error)
	Refine(ctx context.Context, id string) (session.Turn, error)
	Navigate(ctx context.Context, id string, stageID domain.StageID) (session.Turn, error)
	Get(ctx context.Context, id string) (*domain.ConversationState, error)
	List(ctx context.Context) ([]repository.SessionSummary, error)
	Delete(ctx context.Context, id string) error
	StagePrompt(ctx context.Context, id string) (string, error)
	Summary(ctx context.Context, id string) (session.Summary, error)
	Export(ctx context.Context, id string) (*unitplan.Document, error)
	Import(ctx context.Context, doc *unitplan.Document) (string, error)
	Registry() *stage.Registry
}

var _ DesignService = (*session.Manager)(nil)

// App holds what CLI commands need.
type App struct {
	Sessions DesignService

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Now is the clock used for relative timestamps. Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
