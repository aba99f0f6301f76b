package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/unitplan"
)

func TestManager_ExportImportContinuesSession(t *testing.T) {
	m, database := newTestManager(t, Options{})
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.State.SessionID
	_, err = m.Submit(ctx, id, fullSession[0], domain.SourceTyped)
	require.NoError(t, err)
	_, err = m.Submit(ctx, id, "technology", domain.SourceTyped)
	require.NoError(t, err)

	doc, err := m.Export(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StageBigIdea), doc.Stage)
	require.NotNil(t, doc.Pending)

	copyID, err := m.Import(ctx, doc)
	require.NoError(t, err)
	assert.NotEqual(t, id, copyID)

	stored, err := repository.NewSQLiteConversationRepo(database).GetByID(ctx, copyID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageBigIdea, stored.CurrentStageID)
	require.NotNil(t, stored.PendingConfirmation)
	assert.Equal(t, "technology", stored.PendingConfirmation.PendingValue)

	turn, err := m.Confirm(ctx, copyID)
	require.NoError(t, err)
	assert.True(t, turn.StageComplete)

	// The original is untouched.
	orig, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, orig.PendingConfirmation)
}

func TestManager_ImportRejectsInvalidPlan(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	ctx := context.Background()

	_, err := m.Import(ctx, &unitplan.Document{Version: unitplan.Version, Stage: "nowhere"})
	var planErr *InvalidPlanError
	require.ErrorAs(t, err, &planErr)
	assert.Len(t, planErr.Errs, 1)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestManager_ExportUnknownSession(t *testing.T) {
	m, _ := newTestManager(t, Options{})

	_, err := m.Export(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
