package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a SQLite repository in a temp directory for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

func newRun(id string, started time.Time) *entities.Run {
	return &entities.Run{
		ID:         id,
		SourcePath: "perfumes.xlsx",
		OutputDir:  "vault",
		Status:     entities.RunStatusRunning,
		StartedAt:  started,
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("success with file database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.db")
		repo, err := NewRepository(path)
		require.NoError(t, err)
		defer repo.Close()
		assert.Equal(t, path, repo.Path())
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository("")
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	tables := []string{"runs", "unresolved_keys"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_SaveRun(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := newRun("run-1", started)
	require.NoError(t, repo.SaveRun(ctx, run))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, entities.RunStatusRunning, runs[0].Status)
	assert.True(t, runs[0].StartedAt.Equal(started))
	assert.True(t, runs[0].FinishedAt.IsZero())
	assert.Empty(t, runs[0].Error)
}

func TestRepository_SaveRun_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := newRun("run-1", started)
	require.NoError(t, repo.SaveRun(ctx, run))

	run.Status = entities.RunStatusDone
	run.Perfumes = 2
	run.Accords = 3
	run.FilesWritten = 5
	run.FinishedAt = started.Add(1500 * time.Millisecond)
	run.Unresolved = []entities.UnresolvedKey{{Key: "Z", Name: "Ghost", Row: 4}}
	require.NoError(t, repo.SaveRun(ctx, run))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, entities.RunStatusDone, got.Status)
	assert.Equal(t, 2, got.Perfumes)
	assert.Equal(t, 3, got.Accords)
	assert.Equal(t, 5, got.FilesWritten)
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
	assert.Equal(t, []entities.UnresolvedKey{{Key: "Z", Name: "Ghost", Row: 4}}, got.Unresolved)
}

func TestRepository_SaveRun_ReplacesUnresolved(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	run := newRun("run-1", time.Now())
	run.Unresolved = []entities.UnresolvedKey{
		{Key: "A", Name: "One", Row: 2},
		{Key: "B", Name: "Two", Row: 3},
	}
	require.NoError(t, repo.SaveRun(ctx, run))

	run.Unresolved = []entities.UnresolvedKey{{Key: "C", Name: "Three", Row: 5}}
	require.NoError(t, repo.SaveRun(ctx, run))

	keys, err := repo.ListUnresolved(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []entities.UnresolvedKey{{Key: "C", Name: "Three", Row: 5}}, keys)
}

func TestRepository_SaveRun_Error(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	run := newRun("run-1", time.Now())
	run.Status = entities.RunStatusFailed
	run.Error = "reading keyword sheet: boom"
	run.FinishedAt = time.Now()
	require.NoError(t, repo.SaveRun(ctx, run))

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, entities.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "reading keyword sheet: boom", runs[0].Error)
}

func TestRepository_ListRuns_Order(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveRun(ctx, newRun("first", base)))
	require.NoError(t, repo.SaveRun(ctx, newRun("third", base.Add(2*time.Hour))))
	require.NoError(t, repo.SaveRun(ctx, newRun("second", base.Add(time.Hour))))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
	assert.Equal(t, "first", runs[2].ID)
}

func TestRepository_ListRuns_Limit(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := newRun("older", base)
	older.Unresolved = []entities.UnresolvedKey{{Key: "X", Name: "Old", Row: 2}}
	require.NoError(t, repo.SaveRun(ctx, older))

	newer := newRun("newer", base.Add(time.Minute))
	newer.Unresolved = []entities.UnresolvedKey{{Key: "Y", Name: "New", Row: 3}}
	require.NoError(t, repo.SaveRun(ctx, newer))

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, []entities.UnresolvedKey{{Key: "Y", Name: "New", Row: 3}}, runs[0].Unresolved)
}

func TestRepository_ListRuns_Empty(t *testing.T) {
	repo := setupTestRepo(t)

	runs, err := repo.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRepository_ListUnresolved_UnknownRun(t *testing.T) {
	repo := setupTestRepo(t)

	keys, err := repo.ListUnresolved(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRepository_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.SaveRun(ctx, newRun("kept", time.Now())))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.EnsureSchema(ctx))

	runs, err := reopened.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].ID)
}
