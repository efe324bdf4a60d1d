package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edhtail/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func intp(n int) *int { return &n }

func sampleRun() model.Run {
	return model.Run{
		ID:     uuid.New().String(),
		Status: model.RunStatusComplete,
		Params: model.RunParams{
			Query:       "t:legendary type:creature",
			BottomK:     20,
			Concurrency: 8,
			DelaySecs:   0.15,
			RecentDays:  90,
		},
		Stats: model.RunStats{
			CardsFetched: 3200,
			PoolSize:     2100,
			Survivors:    1800,
			Fetched:      1800,
			FetchErrors:  4,
		},
		Results: []model.FetchResult{
			{Name: "Chander", EDHRECURL: "https://edhrec.com/commanders/chander", Decks: intp(3)},
			{Name: "Broken One", EDHRECURL: "https://edhrec.com/route/?cc=Broken+One", Err: "timeout"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_RecordAndGetRun(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, st.RecordRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, run.Params, got.Params)
	assert.Equal(t, run.Stats, got.Stats)
	require.Len(t, got.Results, 2)
	assert.Equal(t, 3, *got.Results[0].Decks)
	assert.Equal(t, "timeout", got.Results[1].Err)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	_, err := st.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_RecordsFailedRun(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	run := model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunStatusFailed,
		Error:     "scryfall: search: unexpected status 500",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.RecordRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, run.Error, got.Error)
	assert.Empty(t, got.Results)
}

func TestSQLiteStore_ListRunsNewestFirst(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := range 3 {
		run := sampleRun()
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		ids = append(ids, run.ID)
		require.NoError(t, st.RecordRun(ctx, run))
	}

	runs, err := st.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestSQLiteStore_ListRunsLimit(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, st.RecordRun(ctx, sampleRun()))
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
