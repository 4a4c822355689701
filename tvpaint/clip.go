package tvpaint

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/johhnry/gotvpaint/george"
)

// Clip is a clip of a scene. Clip ids are meaningful within their project.
type Clip struct {
	removable
	scene *Scene
	id    int
}

var _ Selectable = &Clip{}

// ID returns the clip id.
func (c *Clip) ID() int { return c.id }

// Scene returns the clip's scene.
func (c *Clip) Scene() *Scene { return c.scene }

// Project returns the clip's project.
func (c *Clip) Project() *Project { return c.scene.project }

// Equal reports whether both facades designate the same clip.
func (c *Clip) Equal(other *Clip) bool {
	return other != nil && c.id == other.id && c.scene.Equal(other.scene)
}

func (c *Clip) String() string { return fmt.Sprintf("clip %d", c.id) }

func (c *Clip) client() *george.Client { return c.scene.project.client }

func (c *Clip) alive() error {
	if err := c.check(c.id); err != nil {
		return err
	}
	return c.scene.alive()
}

// IsCurrent reports whether the clip is the current clip of the current
// project.
func (c *Clip) IsCurrent(ctx context.Context) (bool, error) {
	if err := c.alive(); err != nil {
		return false, err
	}
	ok, err := c.Project().IsCurrent(ctx)
	if err != nil || !ok {
		return false, err
	}
	current, err := george.ClipCurrentID(ctx, c.client())
	if err != nil {
		return false, err
	}
	return current == c.id, nil
}

// MakeCurrent selects the clip, and with it its scene.
func (c *Clip) MakeCurrent(ctx context.Context) error {
	return ensureCurrent(ctx, c.IsCurrent, func(ctx context.Context) error {
		if err := c.Project().MakeCurrent(ctx); err != nil {
			return err
		}
		return george.ClipSelect(ctx, c.client(), c.id)
	})
}

// Info describes the clip.
func (c *Clip) Info(ctx context.Context) (george.ClipInfo, error) {
	if err := c.alive(); err != nil {
		return george.ClipInfo{}, err
	}
	return WithCurrentValue(ctx, c.Project(), func(ctx context.Context) (george.ClipInfo, error) {
		return george.GetClipInfo(ctx, c.client(), c.id)
	})
}

// Name returns the clip name.
func (c *Clip) Name(ctx context.Context) (string, error) {
	if err := c.alive(); err != nil {
		return "", err
	}
	return WithCurrentValue(ctx, c.Project(), func(ctx context.Context) (string, error) {
		return george.ClipName(ctx, c.client(), c.id)
	})
}

// SetName renames the clip.
func (c *Clip) SetName(ctx context.Context, name string) error {
	if err := c.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, c.Project(), func(ctx context.Context) error {
		return george.SetClipName(ctx, c.client(), c.id, name)
	})
}

// Position returns the clip's current position in its scene.
func (c *Clip) Position(ctx context.Context) (int, error) {
	if err := c.alive(); err != nil {
		return -1, err
	}
	pos, err := indexOf(c.scene.ClipIDs(ctx), c.id)
	if errors.Is(err, george.ErrNoObject) {
		return -1, notFound("clip", "%d in %s", c.id, c.scene)
	}
	return pos, err
}

// SetPosition moves the clip to position in its scene.
func (c *Clip) SetPosition(ctx context.Context, position int) error {
	if err := c.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, c.Project(), func(ctx context.Context) error {
		return george.ClipMove(ctx, c.client(), c.id, c.scene.id, position)
	})
}

// Duplicate duplicates the clip. The copy is inserted right after it.
func (c *Clip) Duplicate(ctx context.Context) (*Clip, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	id, err := george.UndoableValue(ctx, c.client(), "Clip.Duplicate", func(ctx context.Context) (int, error) {
		pos, err := c.Position(ctx)
		if err != nil {
			return 0, err
		}
		if err := george.ClipDuplicate(ctx, c.client(), c.id); err != nil {
			return 0, err
		}
		return george.ClipEnumID(ctx, c.client(), c.scene.id, pos+1)
	})
	if err != nil {
		return nil, err
	}
	return c.scene.Clip(id), nil
}

// Remove closes the clip and marks the facade removed.
func (c *Clip) Remove(ctx context.Context) error {
	if err := c.alive(); err != nil {
		return err
	}
	err := WithCurrent(ctx, c.Project(), func(ctx context.Context) error {
		return george.ClipClose(ctx, c.client(), c.id)
	})
	if err != nil {
		return err
	}
	c.markRemoved()
	return nil
}

// Layer wraps a known layer id of the clip. It does not call the host.
func (c *Clip) Layer(id int) *Layer {
	return &Layer{removable: removable{kind: "layer"}, clip: c, id: id}
}

// LayerIDs enumerates the layer ids of the clip, top to bottom.
func (c *Clip) LayerIDs(ctx context.Context) iter.Seq2[int, error] {
	if err := c.alive(); err != nil {
		return failed[int](err)
	}
	return within(ctx, c, func(ctx context.Context, pos int) (int, error) {
		return george.LayerGetID(ctx, c.client(), pos)
	})
}

// Layers enumerates the layers of the clip, top to bottom.
func (c *Clip) Layers(ctx context.Context) iter.Seq2[*Layer, error] {
	return mapSeq(c.LayerIDs(ctx), c.Layer)
}

// GetLayer returns the layer with the given id.
func (c *Clip) GetLayer(ctx context.Context, id int) (*Layer, error) {
	for layerID, err := range c.LayerIDs(ctx) {
		if err != nil {
			return nil, err
		}
		if layerID == id {
			return c.Layer(id), nil
		}
	}
	return nil, notFound("layer", "%d in %s", id, c)
}

// LayerByName returns the first layer of the clip named name.
func (c *Clip) LayerByName(ctx context.Context, name string) (*Layer, error) {
	for layer, err := range c.Layers(ctx) {
		if err != nil {
			return nil, err
		}
		info, err := layer.Info(ctx)
		if err != nil {
			return nil, err
		}
		if info.Name == name {
			return layer, nil
		}
	}
	return nil, notFound("layer", "%q in %s", name, c)
}

// CurrentLayer returns the current layer of the clip.
func (c *Clip) CurrentLayer(ctx context.Context) (*Layer, error) {
	id, err := WithCurrentValue(ctx, c, func(ctx context.Context) (int, error) {
		return george.LayerCurrentID(ctx, c.client())
	})
	if err != nil {
		return nil, err
	}
	return c.Layer(id), nil
}

// AddLayer creates a layer above the current layer of the clip. The new
// layer becomes current.
func (c *Clip) AddLayer(ctx context.Context, name string) (*Layer, error) {
	id, err := WithCurrentValue(ctx, c, func(ctx context.Context) (int, error) {
		return george.LayerCreate(ctx, c.client(), name)
	})
	if err != nil {
		return nil, err
	}
	return c.Layer(id), nil
}

// Sound wraps a clip sound track. It does not call the host.
func (c *Clip) Sound(track int) *ClipSound {
	return &ClipSound{removable: removable{kind: "clip sound"}, clip: c, track: track}
}

// Sounds enumerates the clip's sound tracks.
func (c *Clip) Sounds(ctx context.Context) iter.Seq2[*ClipSound, error] {
	if err := c.alive(); err != nil {
		return failed[*ClipSound](err)
	}
	tracks := soundTracks(ctx, c.Project().MakeCurrent, func(ctx context.Context, track int) error {
		_, err := george.SoundClipInfo(ctx, c.client(), c.id, track)
		return err
	})
	return mapSeq(tracks, c.Sound)
}

// AddSound adds a sound track to the clip.
func (c *Clip) AddSound(ctx context.Context, soundPath string) (*ClipSound, error) {
	err := WithCurrent(ctx, c, func(ctx context.Context) error {
		return george.SoundClipNew(ctx, c.client(), soundPath)
	})
	if err != nil {
		return nil, err
	}
	return lastSound(c.Sounds(ctx))
}
