package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/george/georgetest"
	"github.com/johhnry/gotvpaint/internal/logging"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal", "tvp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	for _, line := range []string{"tv_GetWidth", "tv_GetHeight", "tv_GetRatio"} {
		_, err := s.Record(ctx, Entry{Command: line, Reply: "1", Duration: time.Millisecond})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tv_GetRatio", all[0].Command, "newest first")
	assert.Equal(t, "tv_GetWidth", all[2].Command)
	assert.Equal(t, time.Millisecond, all[0].Duration)
	assert.False(t, all[0].Time.IsZero())

	last, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, all[0].ID, last[0].ID)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tvp.db")

	s, err := Open(path)
	require.NoError(t, err)
	rec, err := s.Record(ctx, Entry{Command: "tv_ProjectCurrentId", Reply: "P0001"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "P0001", got[0].Reply)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	script := georgetest.NewScript().
		On("tv_SceneEnumId 3", "none").
		Fail("tv_GetWidth", george.NewTransportError("broken pipe", errors.New("EPIPE")))
	c := george.NewClient(script, george.WithMiddleware(Middleware(s, logging.NewNop())))

	_, err := george.SceneEnumID(ctx, c, 3)
	require.ErrorIs(t, err, george.ErrNoObject)
	_, err = george.GetWidth(ctx, c)
	require.Error(t, err)

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "tv_GetWidth", entries[0].Command)
	assert.Contains(t, entries[0].Err, "broken pipe")

	assert.Equal(t, "tv_SceneEnumId 3", entries[1].Command)
	assert.Equal(t, "none", entries[1].Reply)
	assert.Empty(t, entries[1].Err, "sentinel replies are answers, not transport errors")
}
