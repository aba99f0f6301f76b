package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/pblcoach/internal/db"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileTestDB opens a file-backed database so every pooled connection
// sees the same data, which :memory: does not.
func newFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "concurrent_test.db"))
	require.NoError(t, err, "failed to create file test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// Readers listing sessions while a writer saves new ones through the unit
// of work must only ever see fully written sessions.
func TestConcurrentAccess_ListDuringSave(t *testing.T) {
	database := newFileTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)
	repo := NewSQLiteConversationRepo(database)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			state := testutil.NewTestConversation(
				testutil.AtStage(domain.StageBigIdea),
				testutil.WithCompleted(domain.StageContext),
				testutil.WithData(domain.KeySubject, fmt.Sprintf("subject-%d", i)),
			)
			err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				return NewSQLiteConversationRepo(tx).Save(ctx, state)
			})
			if err != nil {
				t.Errorf("writer: save %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				list, err := repo.List(ctx)
				if err != nil {
					t.Errorf("reader %d: list: %v", reader, err)
					return
				}
				for _, s := range list {
					if s.Subject == "" || s.CompletedCount != 1 {
						t.Errorf("reader %d: partially written session %+v", reader, s)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
