package george_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/george/georgetest"
)

func newHostClient(t *testing.T) (*georgetest.Host, *george.Client, string) {
	t.Helper()
	host, projectID := georgetest.NewHostWithProject("/tmp/shots/sh010.tvpp")
	return host, george.NewClient(host), projectID
}

func TestProjectNew(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the id", func(t *testing.T) {
		host := georgetest.NewHost()
		c := george.NewClient(host)

		id, err := george.ProjectNew(ctx, c, "/tmp/new.tvpp", george.DefaultNewProjectOptions())
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, []string{"tv_ProjectNew /tmp/new.tvpp 1920 1080 1 24 none 1"}, host.Lines())
	})

	t.Run("empty reply is a partial success", func(t *testing.T) {
		host := georgetest.NewHost()
		host.CorruptNew(true)
		c := george.NewClient(host)

		_, err := george.ProjectNew(ctx, c, "/tmp/new.tvpp", george.DefaultNewProjectOptions())
		require.ErrorIs(t, err, george.ErrPartialSuccess)

		// The project exists anyway.
		id, err := george.ProjectEnumID(ctx, c, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})
}

func TestLoadProject(t *testing.T) {
	ctx := context.Background()
	host := georgetest.NewHost()
	c := george.NewClient(host)

	_, err := george.LoadProject(ctx, c, "/does/not/exist.tvpp", nil)
	var argErr *george.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Empty(t, host.Lines(), "no host call for a missing file")

	dir := t.TempDir()
	bad := filepath.Join(dir, "clip.mov")
	require.NoError(t, os.WriteFile(bad, nil, 0o644))
	_, err = george.LoadProject(ctx, c, bad, nil)
	require.ErrorIs(t, err, george.ErrInvalidTarget)
	assert.Contains(t, err.Error(), "Invalid format")

	good := filepath.Join(dir, "sh010.tvpp")
	require.NoError(t, os.WriteFile(good, nil, 0o644))
	silent := true
	id, err := george.LoadProject(ctx, c, good, &silent)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, host.Lines()[len(host.Lines())-1], "silent 1")
}

func TestSaveProjectMissingParent(t *testing.T) {
	_, c, _ := newHostClient(t)
	err := george.SaveProject(context.Background(), c, "/does/not/exist/a.tvpp")
	var argErr *george.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestProjectInfo(t *testing.T) {
	ctx := context.Background()
	_, c, projectID := newHostClient(t)

	info, err := george.GetProjectInfo(ctx, c, projectID)
	require.NoError(t, err)
	assert.Equal(t, george.ProjectInfo{
		ID:               projectID,
		Path:             "/tmp/shots/sh010.tvpp",
		Width:            1920,
		Height:           1080,
		PixelAspectRatio: 1,
		FrameRate:        24,
		FieldOrder:       george.FieldOrderNone,
		StartFrame:       1,
	}, info)

	_, err = george.GetProjectInfo(ctx, c, "nope")
	assert.ErrorIs(t, err, george.ErrNoObject)
}

func TestProjectEnumeration(t *testing.T) {
	ctx := context.Background()
	_, c, projectID := newHostClient(t)

	id, err := george.ProjectEnumID(ctx, c, 0)
	require.NoError(t, err)
	assert.Equal(t, projectID, id)

	_, err = george.ProjectEnumID(ctx, c, 1)
	assert.ErrorIs(t, err, george.ErrNoObject)

	current, err := george.ProjectCurrentID(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, projectID, current)
}

func TestFrameRate(t *testing.T) {
	ctx := context.Background()
	host, c, _ := newHostClient(t)

	require.NoError(t, george.SetProjectFrameRate(ctx, c, 25, true))
	require.NoError(t, george.SetPreviewFrameRate(ctx, c, 12))

	project, playback, err := george.FrameRate(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 25.0, project)
	assert.Equal(t, 12.0, playback)
	assert.Contains(t, host.Lines(), "tv_FrameRate 25 timestretch")
	assert.Equal(t, []string{"SetProjectFrameRate", "SetPreviewFrameRate"}, host.UndoSteps())
}

func TestBackground(t *testing.T) {
	ctx := context.Background()
	_, c, _ := newHostClient(t)

	bg, err := george.GetBackground(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, george.Background{Mode: george.BackgroundNone}, bg)

	check := george.Background{
		Mode:   george.BackgroundCheck,
		Colors: []george.RGBColor{{255, 255, 255}, {10, 20, 30}},
	}
	require.NoError(t, george.SetBackground(ctx, c, check))
	bg, err = george.GetBackground(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, check, bg)

	color := george.Background{Mode: george.BackgroundColor, Colors: []george.RGBColor{{1, 2, 3}}}
	require.NoError(t, george.SetBackground(ctx, c, color))
	bg, err = george.GetBackground(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, color, bg)

	err = george.SetBackground(ctx, c, george.Background{Mode: george.BackgroundCheck})
	var argErr *george.ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestProjectHeader(t *testing.T) {
	ctx := context.Background()
	_, c, projectID := newHostClient(t)

	require.NoError(t, george.SetProjectHeader(ctx, c, george.HeaderAuthor, projectID, "Jane Doe"))
	author, err := george.ProjectHeader(ctx, c, george.HeaderAuthor, projectID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", author)

	_, err = george.ProjectHeader(ctx, c, george.HeaderNotes, "nope")
	require.ErrorIs(t, err, george.ErrNoObject)
	assert.Contains(t, err.Error(), "Invalid project id")
}

func TestStartAndCurrentFrame(t *testing.T) {
	ctx := context.Background()
	_, c, _ := newHostClient(t)

	start, err := george.SetStartFrame(ctx, c, 101)
	require.NoError(t, err)
	assert.Equal(t, 101, start)

	got, err := george.StartFrame(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 101, got)

	frame, err := george.SetProjectCurrentFrame(ctx, c, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, frame)
}

func TestProjectSounds(t *testing.T) {
	ctx := context.Background()
	_, c, projectID := newHostClient(t)

	err := george.SoundProjectNew(ctx, c, "/does/not/exist.wav")
	var argErr *george.ArgumentError
	require.ErrorAs(t, err, &argErr)

	wav := filepath.Join(t.TempDir(), "music.wav")
	require.NoError(t, os.WriteFile(wav, nil, 0o644))
	require.NoError(t, george.SoundProjectNew(ctx, c, wav))

	vol, mute, offset := 0.5, true, 1.5
	require.NoError(t, george.SoundProjectAdjust(ctx, c, 0, george.SoundAdjust{Mute: &mute, Volume: &vol, Offset: &offset}))

	info, err := george.SoundProjectInfo(ctx, c, projectID, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(wav), info.Path)
	assert.Equal(t, 0.5, info.Volume)
	assert.True(t, info.Mute)
	assert.Equal(t, 1.5, info.Offset)

	_, err = george.SoundProjectInfo(ctx, c, projectID, 3)
	assert.ErrorIs(t, err, george.ErrInvalidTarget)
	_, err = george.SoundProjectInfo(ctx, c, "nope", 0)
	assert.ErrorIs(t, err, george.ErrNoObject)

	require.NoError(t, george.SoundProjectReload(ctx, c, projectID, 0))
	require.NoError(t, george.SoundProjectRemove(ctx, c, 0))
	assert.ErrorIs(t, george.SoundProjectRemove(ctx, c, 0), george.ErrInvalidTarget)
}

func TestScenesAndClips(t *testing.T) {
	ctx := context.Background()
	host, c, _ := newHostClient(t)

	sceneID, err := george.SceneEnumID(ctx, c, 0)
	require.NoError(t, err)
	_, err = george.SceneEnumID(ctx, c, 1)
	require.ErrorIs(t, err, george.ErrNoObject)

	clipID, err := george.ClipEnumID(ctx, c, sceneID, 0)
	require.NoError(t, err)
	_, err = george.ClipEnumID(ctx, c, sceneID, 1)
	require.ErrorIs(t, err, george.ErrNoObject)

	require.NoError(t, george.SetClipName(ctx, c, clipID, "intro shot"))
	name, err := george.ClipName(ctx, c, clipID)
	require.NoError(t, err)
	assert.Equal(t, "intro shot", name)

	info, err := george.GetClipInfo(ctx, c, clipID)
	require.NoError(t, err)
	assert.Equal(t, clipID, info.ID)
	assert.Equal(t, "intro shot", info.Name)
	assert.True(t, info.IsSelected)

	_, err = george.GetClipInfo(ctx, c, 9999)
	assert.ErrorIs(t, err, george.ErrNoObject)

	require.NoError(t, george.SceneNew(ctx, c))
	assert.Len(t, host.SceneIDs(mustCurrentProject(t, c)), 2)

	current, err := george.SceneCurrentID(ctx, c)
	require.NoError(t, err)
	assert.NotEqual(t, sceneID, current, "the new scene becomes current")
}

func TestLayers(t *testing.T) {
	ctx := context.Background()
	_, c, _ := newHostClient(t)

	first, err := george.LayerGetID(ctx, c, 0)
	require.NoError(t, err)

	created, err := george.LayerCreate(ctx, c, "ink")
	require.NoError(t, err)
	assert.NotEqual(t, first, created)

	current, err := george.LayerCurrentID(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, created, current)

	info, err := george.GetLayerInfo(ctx, c, created)
	require.NoError(t, err)
	assert.Equal(t, "ink", info.Name)
	assert.Equal(t, george.LayerImage, info.Type)
	assert.Equal(t, george.StencilOff, info.Stencil)
	assert.True(t, info.Selected)

	require.NoError(t, george.LayerRename(ctx, c, created, "line art"))
	info, err = george.GetLayerInfo(ctx, c, created)
	require.NoError(t, err)
	assert.Equal(t, "line art", info.Name)

	require.NoError(t, george.LayerKill(ctx, c, created))
	_, err = george.GetLayerInfo(ctx, c, created)
	assert.ErrorIs(t, err, george.ErrNoObject)
}

func mustCurrentProject(t *testing.T, c *george.Client) string {
	t.Helper()
	id, err := george.ProjectCurrentID(context.Background(), c)
	require.NoError(t, err)
	return id
}
