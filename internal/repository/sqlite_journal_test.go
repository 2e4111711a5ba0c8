package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalTestSetup(t *testing.T) *SQLiteJournalRepo {
	t.Helper()
	return NewSQLiteJournalRepo(testutil.NewTestDB(t))
}

func testDraft(start time.Time) domain.WorkLogDraft {
	ref := domain.SourceRef{Type: domain.SourceStory, SourceID: "101", ProjectID: "7"}
	return testutil.NewTestDraft(ref, start, start.Add(30*time.Minute), 0.5)
}

func TestJournalRepo_CreateAndGetByID(t *testing.T) {
	repo := journalTestSetup(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	entry := testutil.NewTestJournalEntry(testDraft(start), domain.JournalSubmitted, start.Add(31*time.Minute))
	entry.RemoteID = "wl-88"
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, domain.JournalSubmitted, got.Status)
	assert.Equal(t, "wl-88", got.RemoteID)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "7", got.Draft.ProjectID)
	assert.Equal(t, domain.SourceStory, got.Draft.SourceType)
	assert.Equal(t, 0.5, got.Draft.HoursSpent)
	assert.Equal(t, "2025-03-10", got.Draft.WorkDate)
	assert.True(t, start.Equal(got.Draft.StartedAt))
	assert.True(t, start.Add(30*time.Minute).Equal(got.Draft.EndedAt))
}

func TestJournalRepo_GetByID_NotFound(t *testing.T) {
	repo := journalTestSetup(t)
	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalRepo_ListRecentNewestFirst(t *testing.T) {
	repo := journalTestSetup(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		e := testutil.NewTestJournalEntry(testDraft(at), domain.JournalSubmitted, at)
		require.NoError(t, repo.Create(ctx, e))
		ids = append(ids, e.ID)
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[3], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)

	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestJournalRepo_MarkFailedThenSubmitted(t *testing.T) {
	repo := journalTestSetup(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	e := testutil.NewTestJournalEntry(testDraft(at), domain.JournalFailed, at)
	e.Error = "ledger unavailable"
	require.NoError(t, repo.Create(ctx, e))

	failed, err := repo.ListByStatus(ctx, domain.JournalFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)

	require.NoError(t, repo.MarkFailed(ctx, e.ID, "timeout"))
	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "timeout", got.Error)

	require.NoError(t, repo.MarkSubmitted(ctx, e.ID, "wl-9"))
	got, err = repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JournalSubmitted, got.Status)
	assert.Equal(t, "wl-9", got.RemoteID)
	assert.Equal(t, 3, got.Attempts)
	assert.Empty(t, got.Error)

	failed, err = repo.ListByStatus(ctx, domain.JournalFailed)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestJournalRepo_MarkUnknownIsNotFound(t *testing.T) {
	repo := journalTestSetup(t)
	ctx := context.Background()
	assert.ErrorIs(t, repo.MarkSubmitted(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkFailed(ctx, "missing", "x"), ErrNotFound)
}
