package history_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/osallek/osa-extractor/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock returns a new time, one minute later, on each call.
func clock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func openStore(t *testing.T, dir string) *history.Store {
	t.Helper()

	s, err := history.Open(dir, history.WithNow(clock()))
	require.NoError(t, err, "Setup: failed to open history")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := history.Open(dir)
	require.NoError(t, err, "Open should create missing directories")
	_, err = s.Add(context.Background(), history.Record{SaveName: "kalmar.eu4", SnapshotID: "snap"})
	require.NoError(t, err, "Setup: failed to add record")
	require.NoError(t, s.Close(), "Close should not return an error")

	assert.FileExists(t, filepath.Join(dir, "history.db"))

	s, err = history.Open(dir)
	require.NoError(t, err, "Reopening should not return an error")
	defer s.Close()
	got, err := s.List(context.Background(), 0)
	require.NoError(t, err, "List should not return an error")
	assert.Len(t, got, 1, "Records should survive reopening")
}

func TestAdd(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())

	got, err := s.Add(context.Background(), history.Record{
		SaveName:   "kalmar.eu4",
		SavePath:   "/saves/kalmar.eu4",
		SnapshotID: "snap",
		Link:       "https://example.com/save/snap",
	})
	require.NoError(t, err, "Add should not return an error")

	_, err = ulid.Parse(got.ID)
	require.NoError(t, err, "Record id should be a ULID")
	assert.Equal(t, time.Date(2024, 5, 1, 10, 1, 0, 0, time.UTC), got.SubmittedAt)

	records, err := s.List(context.Background(), 0)
	require.NoError(t, err, "List should not return an error")
	assert.Equal(t, []history.Record{got}, records, "Stored record should be read back")
}

func TestList(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		limit int

		want []string
	}{
		"All records":       {want: []string{"c", "b", "a"}},
		"Negative limit":    {limit: -1, want: []string{"c", "b", "a"}},
		"Limited":           {limit: 2, want: []string{"c", "b"}},
		"Limit above count": {limit: 10, want: []string{"c", "b", "a"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := openStore(t, t.TempDir())
			for _, id := range []string{"a", "b", "c"} {
				_, err := s.Add(context.Background(), history.Record{SaveName: "kalmar.eu4", SnapshotID: id})
				require.NoError(t, err, "Setup: failed to add record")
			}

			records, err := s.List(context.Background(), tc.limit)
			require.NoError(t, err, "List should not return an error")

			var got []string
			for _, r := range records {
				got = append(got, r.SnapshotID)
			}
			assert.Equal(t, tc.want, got, "Records should be listed newest first")
		})
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	for _, r := range []history.Record{
		{SaveName: "kalmar.eu4", SnapshotID: "first"},
		{SaveName: "castile.eu4", SnapshotID: "other"},
		{SaveName: "kalmar.eu4", SnapshotID: "second"},
	} {
		_, err := s.Add(context.Background(), r)
		require.NoError(t, err, "Setup: failed to add record")
	}

	got, ok, err := s.Latest(context.Background(), "kalmar.eu4")
	require.NoError(t, err, "Latest should not return an error")
	require.True(t, ok, "Latest should find the save")
	assert.Equal(t, "second", got.SnapshotID, "Latest should return the newest submission of the save")

	_, ok, err = s.Latest(context.Background(), "unknown.eu4")
	require.NoError(t, err, "Latest should not return an error for unknown saves")
	assert.False(t, ok, "Latest should not find unknown saves")
}
