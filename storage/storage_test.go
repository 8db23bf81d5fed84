package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/meenmo/dualstrip/storage"
	"github.com/meenmo/dualstrip/stripper"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	now := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	result := &stripper.Result{
		DiscDates: []time.Time{now.AddDate(0, 0, 100), now.AddDate(0, 0, 200)},
		DiscAbs:   []float64{0.999, 0.99},
		IdxDates:  []time.Time{now.AddDate(0, 0, 50), now.AddDate(0, 0, 100), now.AddDate(0, 0, 200)},
		IdxAbs:    []float64{0.9995, 0.998, 0.98},
		NowDate:   now,
	}

	runID, err := s.Save(context.Background(), result)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	loaded, err := s.Load(context.Background(), runID)
	require.NoError(t, err)
	require.Equal(t, runID, loaded.RunID)
	require.True(t, result.NowDate.Equal(loaded.NowDate))
	require.Equal(t, len(result.DiscDates), len(loaded.DiscDates))
	for i := range result.DiscDates {
		require.True(t, result.DiscDates[i].Equal(loaded.DiscDates[i]))
	}
	require.Equal(t, result.DiscAbs, loaded.DiscAbs)
	require.Equal(t, len(result.IdxDates), len(loaded.IdxDates))
	for i := range result.IdxDates {
		require.True(t, result.IdxDates[i].Equal(loaded.IdxDates[i]))
	}
	require.Equal(t, result.IdxAbs, loaded.IdxAbs)
}

func TestStore_LoadUnknownRunID(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	_, err := s.Load(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestStore_SaveAssignsDistinctRunIDs(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	now := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	result := &stripper.Result{
		DiscDates: []time.Time{now.AddDate(0, 0, 100)},
		DiscAbs:   []float64{0.999},
		IdxDates:  []time.Time{now.AddDate(0, 0, 100)},
		IdxAbs:    []float64{0.998},
		NowDate:   now,
	}

	id1, err := s.Save(context.Background(), result)
	require.NoError(t, err)
	id2, err := s.Save(context.Background(), result)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}
