package session

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alexanderramin/pblcoach/internal/dialogue"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/intelligence"
	"github.com/alexanderramin/pblcoach/internal/narrative"
	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/stage"
	"github.com/alexanderramin/pblcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

var fullSession = []string{
	"I teach 7th grade science",
	"Energy shapes how communities grow",
	"How can renewable energy transform rural communities?",
	"Design a solar-powered charging station for our school",
	"Research energy needs, prototype, test and present to the board",
	"A working prototype and a pitch to the school board",
}

func newEngine() *dialogue.Engine {
	return dialogue.NewEngine(
		stage.Default(),
		narrative.NewGenerator(narrative.DefaultPack(), firstRand{}),
		dialogue.DefaultClassifierPolicy(),
		nil,
	)
}

func newTestManager(t *testing.T, opts Options) (*Manager, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	m, err := NewManager(newEngine(), repository.NewSQLiteConversationRepo(database), testutil.NewTestUoW(database), opts)
	require.NoError(t, err)
	return m, database
}

func TestManager_StartPersistsAndPrompts(t *testing.T) {
	m, database := newTestManager(t, Options{})
	ctx := context.Background()

	turn, err := m.Start(ctx)
	require.NoError(t, err)

	assert.True(t, turn.Success)
	assert.Equal(t, domain.StageContext, turn.StageID)
	assert.NotEmpty(t, turn.Message)
	require.NotNil(t, turn.State)

	stored, err := repository.NewSQLiteConversationRepo(database).GetByID(ctx, turn.State.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageContext, stored.CurrentStageID)
}

func TestManager_FullSessionSurvivesCacheEviction(t *testing.T) {
	// A cache of one forces a reload from storage whenever two sessions interleave.
	m, _ := newTestManager(t, Options{CacheSize: 1})
	ctx := context.Background()

	a, err := m.Start(ctx)
	require.NoError(t, err)
	b, err := m.Start(ctx)
	require.NoError(t, err)
	idA, idB := a.State.SessionID, b.State.SessionID

	for _, in := range fullSession {
		ta, err := m.Submit(ctx, idA, in, domain.SourceTyped)
		require.NoError(t, err)
		require.True(t, ta.StageComplete, "session A input %q", in)

		tb, err := m.Submit(ctx, idB, in, domain.SourceTyped)
		require.NoError(t, err)
		require.True(t, tb.StageComplete, "session B input %q", in)
	}

	for _, id := range []string{idA, idB} {
		state, err := m.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, state.Terminal)
		assert.Len(t, state.CompletedStageIDs, 6)
		assert.Equal(t, "How can renewable energy transform rural communities?", state.Context.EssentialQuestion)
	}

	turn, err := m.Submit(ctx, idA, "One more thing to add", domain.SourceTyped)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeSessionTerminal, turn.Code)
	assert.Equal(t, intelligence.SourceDeterministic, turn.CoachSource)
}

func TestManager_ConfirmAndRefine(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID

	_, err = m.Submit(ctx, id, fullSession[0], domain.SourceTyped)
	require.NoError(t, err)

	held, err := m.Submit(ctx, id, "technology", domain.SourceTyped)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelReview, held.Level)
	require.NotNil(t, held.State.PendingConfirmation)

	refined, err := m.Refine(ctx, id)
	require.NoError(t, err)
	assert.Len(t, refined.Suggestions, narrative.RefinementCount)
	assert.Nil(t, refined.State.PendingConfirmation)

	_, err = m.Confirm(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNoPendingConfirmation)

	_, err = m.Submit(ctx, id, "technology", domain.SourceTyped)
	require.NoError(t, err)
	confirmed, err := m.Confirm(ctx, id)
	require.NoError(t, err)
	assert.True(t, confirmed.StageComplete)
	assert.Equal(t, domain.StageEssentialQuestion, confirmed.NextStageID)

	state, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "technology", state.Context.BigIdea)
}

func TestManager_Navigate(t *testing.T) {
	m, database := newTestManager(t, Options{})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID

	turn, err := m.Navigate(ctx, id, domain.StageChallenge)
	require.NoError(t, err)
	assert.Equal(t, domain.StageContext, turn.StageID)
	assert.Equal(t, domain.StageChallenge, turn.NextStageID)
	assert.NotEmpty(t, turn.Message)

	stored, err := repository.NewSQLiteConversationRepo(database).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageChallenge, stored.CurrentStageID)
	assert.Empty(t, stored.CompletedStageIDs)

	_, err = m.Navigate(ctx, id, "nowhere")
	var unknown *domain.UnknownStageError
	assert.ErrorAs(t, err, &unknown)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Submit(ctx, "missing", "hello there", domain.SourceTyped)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrSessionNotFound)
}

func TestManager_ListAndDelete(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	a, err := m.Start(ctx)
	require.NoError(t, err)
	b, err := m.Start(ctx)
	require.NoError(t, err)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, m.Delete(ctx, a.State.SessionID))
	_, err = m.Get(ctx, a.State.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	list, err = m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.State.SessionID, list[0].ID)
}

func TestManager_StagePrompt(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID

	prompt, err := m.StagePrompt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, start.Message, prompt)

	for _, in := range fullSession {
		_, err := m.Submit(ctx, id, in, domain.SourceTyped)
		require.NoError(t, err)
	}
	prompt, err = m.StagePrompt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, stage.SessionComplete().ErrorMessage, prompt)
}

func TestManager_Summary(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID
	for _, in := range fullSession[:2] {
		_, err := m.Submit(ctx, id, in, domain.SourceTyped)
		require.NoError(t, err)
	}

	sum, err := m.Summary(ctx, id)
	require.NoError(t, err)

	require.Len(t, sum.Stages, 6)
	assert.Equal(t, 2, sum.CompletedCount())
	assert.False(t, sum.RequiredComplete())
	assert.Equal(t, domain.StageContext, sum.Stages[0].ID)
	assert.Equal(t, "I teach 7th grade science", sum.Stages[0].Values[domain.KeyGradeLevel])
	assert.Equal(t, "Energy shapes how communities grow", sum.Stages[1].Values[domain.KeyBigIdea])
	assert.True(t, sum.Stages[2].Current)
	assert.False(t, sum.Stages[2].Completed)
	assert.False(t, sum.Stages[4].Required)
}

func TestManager_PersistFailureEvictsLiveState(t *testing.T) {
	database := testutil.NewTestDB(t)
	injected := errors.New("disk full")
	repo := repository.NewSQLiteConversationRepo(database)
	ctx := context.Background()

	m, err := NewManager(newEngine(), repo, testutil.NewTestUoW(database), Options{})
	require.NoError(t, err)
	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID

	// Swap in a unit of work whose first write fails.
	m.uow = &testutil.FailingExecUoW{DB: database, FailOn: 1, Err: injected}
	_, err = m.Submit(ctx, id, fullSession[0], domain.SourceTyped)
	require.ErrorIs(t, err, injected)

	state, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageContext, state.CurrentStageID, "live state must be reloaded from storage")
	assert.Empty(t, state.CompletedStageIDs)
}

type recordingCoach struct {
	mu   sync.Mutex
	reqs []intelligence.CoachRequest
}

func (c *recordingCoach) Reply(_ context.Context, req intelligence.CoachRequest) intelligence.CoachReply {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs = append(c.reqs, req)
	return intelligence.CoachReply{Message: "coach: " + req.Draft, Source: intelligence.SourceLLM}
}

func TestManager_CoachPhrasesReplies(t *testing.T) {
	coach := &recordingCoach{}
	m, _ := newTestManager(t, Options{Coach: coach})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)

	turn, err := m.Submit(ctx, start.State.SessionID, "hi", domain.SourceTyped)
	require.NoError(t, err)

	assert.Equal(t, intelligence.SourceLLM, turn.CoachSource)
	assert.Equal(t, "coach: "+turn.Draft, turn.Message)
	require.Len(t, coach.reqs, 1)
	req := coach.reqs[0]
	assert.Equal(t, domain.StageContext, req.StageID)
	assert.Equal(t, "Project Context", req.StageName)
	assert.Equal(t, "hi", req.Input)
	assert.False(t, req.Accepted)
}

func TestManager_ObserverRecordsUseCases(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestManager(t, Options{Observer: NewLogUseCaseObserver(&buf)})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.Submit(ctx, start.State.SessionID, fullSession[0], domain.SourceTyped)
	require.NoError(t, err)
	_, err = m.Confirm(ctx, start.State.SessionID)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "use_case=start")
	assert.Contains(t, out, "use_case=submit")
	assert.Contains(t, out, "stage=context")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "use_case=confirm")
}

func TestManager_ConcurrentSessions(t *testing.T) {
	m, _ := newTestManager(t, Options{CacheSize: 2})
	ctx := context.Background()

	const sessions = 6
	ids := make([]string, sessions)
	for i := range ids {
		turn, err := m.Start(ctx)
		require.NoError(t, err)
		ids[i] = turn.State.SessionID
	}

	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, in := range fullSession {
				turn, err := m.Submit(ctx, id, in, domain.SourceTyped)
				if err != nil {
					errs <- err
					return
				}
				if !turn.StageComplete {
					errs <- fmt.Errorf("session %s: %q not accepted", id, in)
					return
				}
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	for _, id := range ids {
		state, err := m.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, state.Terminal, id)
	}
}
