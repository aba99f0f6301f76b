// Package session runs design sessions on top of the dialogue engine. It
// owns the live stores, serializes calls per session, persists every
// applied patch and asks the coach to phrase replies.
package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alexanderramin/pblcoach/internal/db"
	"github.com/alexanderramin/pblcoach/internal/dialogue"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/intelligence"
	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/stage"
	"github.com/alexanderramin/pblcoach/internal/store"
)

// ErrSessionNotFound is returned for an id with no stored session.
var ErrSessionNotFound = errors.New("design session not found")

const lockStripes = 64

// Options configures a Manager. Zero values select defaults.
type Options struct {
	CacheSize int
	Coach     intelligence.CoachService
	Observer  UseCaseObserver
	Now       func() time.Time
}

// Manager is safe for concurrent use. Calls for the same session run one
// at a time; calls for different sessions run in parallel.
type Manager struct {
	engine   *dialogue.Engine
	sessions repository.ConversationRepo
	uow      db.UnitOfWork
	coach    intelligence.CoachService
	observer UseCaseObserver
	now      func() time.Time

	cache *lru.Cache[string, *entry]
	locks [lockStripes]sync.Mutex
}

// entry is one live store plus the persistence state of its listener.
// It is only touched while the session's stripe lock is held.
type entry struct {
	store      *store.Store
	ctx        context.Context
	persistErr error
}

// NewManager wires a Manager. sessions is used for reads outside a
// transaction; writes go through uow.
func NewManager(engine *dialogue.Engine, sessions repository.ConversationRepo, uow db.UnitOfWork, opts Options) (*Manager, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}

	m := &Manager{
		engine:   engine,
		sessions: sessions,
		uow:      uow,
		coach:    opts.Coach,
		observer: opts.Observer,
		now:      opts.Now,
		cache:    cache,
	}
	if m.coach == nil {
		m.coach = intelligence.DeterministicCoach{}
	}
	if m.observer == nil {
		m.observer = NoopUseCaseObserver{}
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	return m, nil
}

// Start creates and persists a new session positioned at the first stage
// and returns its opening prompt.
func (m *Manager) Start(ctx context.Context) (_ Turn, err error) {
	id := uuid.New().String()
	fields, done := m.track(ctx, "start", id)
	defer func() { done(err) }()

	initial := m.engine.Registry().Initial()
	state := domain.NewConversationState(id, initial.ID, m.now())

	unlock := m.lock(id)
	defer unlock()

	if err := m.save(ctx, state); err != nil {
		return Turn{}, err
	}
	e, err := m.admit(state)
	if err != nil {
		return Turn{}, err
	}

	prompt, err := m.engine.StagePrompt(initial.ID, state.Context)
	if err != nil {
		return Turn{}, err
	}
	fields["stage"] = string(initial.ID)

	return Turn{
		Response: dialogue.Response{
			Success:     true,
			Message:     prompt,
			StageID:     initial.ID,
			NextStageID: initial.ID,
			State:       e.store.State(),
		},
		Draft:       prompt,
		CoachSource: intelligence.SourceDeterministic,
	}, nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(ctx context.Context, id string) (*domain.ConversationState, error) {
	unlock := m.lock(id)
	defer unlock()

	e, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.store.State(), nil
}

// List returns stored sessions, most recently updated first.
func (m *Manager) List(ctx context.Context) ([]repository.SessionSummary, error) {
	return m.sessions.List(ctx)
}

// Delete removes a session from storage and from the cache.
func (m *Manager) Delete(ctx context.Context, id string) (err error) {
	_, done := m.track(ctx, "delete", id)
	defer func() { done(err) }()

	unlock := m.lock(id)
	defer unlock()

	m.cache.Remove(id)
	if err := m.sessions.Delete(ctx, id); err != nil {
		return notFound(id, err)
	}
	return nil
}

// StagePrompt returns the question for the session's active stage, or the
// completion notice once the session is terminal.
func (m *Manager) StagePrompt(ctx context.Context, id string) (string, error) {
	state, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if state.Terminal {
		return stage.SessionComplete().ErrorMessage, nil
	}
	return m.engine.StagePrompt(state.CurrentStageID, state.Context)
}

// Registry exposes the stage registry sessions run over.
func (m *Manager) Registry() *stage.Registry {
	return m.engine.Registry()
}

func (m *Manager) lock(id string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &m.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// load returns the cached entry for id, reading it from storage on a miss.
// The caller must hold the session lock.
func (m *Manager) load(ctx context.Context, id string) (*entry, error) {
	if e, ok := m.cache.Get(id); ok {
		return e, nil
	}
	state, err := m.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	return m.admit(state)
}

// admit wraps state in a store that persists every applied patch and puts
// it in the cache.
func (m *Manager) admit(state *domain.ConversationState) (*entry, error) {
	st, err := store.New(m.engine.Registry(), state)
	if err != nil {
		return nil, fmt.Errorf("restoring session %s: %w", state.SessionID, err)
	}
	e := &entry{store: st, ctx: context.Background()}
	st.Subscribe(func(snapshot *domain.ConversationState) {
		if e.persistErr != nil {
			return
		}
		e.persistErr = m.save(e.ctx, snapshot)
	})
	m.cache.Add(state.SessionID, e)
	return e, nil
}

func (m *Manager) save(ctx context.Context, state *domain.ConversationState) error {
	err := m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteConversationRepo(tx).Save(ctx, state)
	})
	if err != nil {
		return fmt.Errorf("persisting session %s: %w", state.SessionID, err)
	}
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return err
}
