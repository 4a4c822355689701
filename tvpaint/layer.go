package tvpaint

import (
	"context"
	"errors"
	"fmt"

	"github.com/johhnry/gotvpaint/george"
)

// Layer is a layer of a clip.
type Layer struct {
	removable
	clip *Clip
	id   int
}

var _ Selectable = &Layer{}

// ID returns the layer id.
func (l *Layer) ID() int { return l.id }

// Clip returns the layer's clip.
func (l *Layer) Clip() *Clip { return l.clip }

// Equal reports whether both facades designate the same layer.
func (l *Layer) Equal(other *Layer) bool {
	return other != nil && l.id == other.id && l.clip.Equal(other.clip)
}

func (l *Layer) String() string { return fmt.Sprintf("layer %d", l.id) }

func (l *Layer) client() *george.Client { return l.clip.client() }

func (l *Layer) alive() error {
	if err := l.check(l.id); err != nil {
		return err
	}
	return l.clip.alive()
}

// IsCurrent reports whether the layer is the current layer of the current
// clip.
func (l *Layer) IsCurrent(ctx context.Context) (bool, error) {
	if err := l.alive(); err != nil {
		return false, err
	}
	ok, err := l.clip.IsCurrent(ctx)
	if err != nil || !ok {
		return false, err
	}
	current, err := george.LayerCurrentID(ctx, l.client())
	if err != nil {
		return false, err
	}
	return current == l.id, nil
}

// MakeCurrent selects the layer, selecting its clip first when needed.
func (l *Layer) MakeCurrent(ctx context.Context) error {
	return ensureCurrent(ctx, l.IsCurrent, func(ctx context.Context) error {
		if err := l.clip.MakeCurrent(ctx); err != nil {
			return err
		}
		return george.LayerSet(ctx, l.client(), l.id)
	})
}

// Info describes the layer.
func (l *Layer) Info(ctx context.Context) (george.LayerInfo, error) {
	if err := l.alive(); err != nil {
		return george.LayerInfo{}, err
	}
	return WithCurrentValue(ctx, l.clip, func(ctx context.Context) (george.LayerInfo, error) {
		return george.GetLayerInfo(ctx, l.client(), l.id)
	})
}

// Name returns the layer name.
func (l *Layer) Name(ctx context.Context) (string, error) {
	info, err := l.Info(ctx)
	return info.Name, err
}

// Rename renames the layer.
func (l *Layer) Rename(ctx context.Context, name string) error {
	if err := l.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, l.clip, func(ctx context.Context) error {
		return george.LayerRename(ctx, l.client(), l.id, name)
	})
}

// Position returns the layer's current position in its clip, 0 being the
// top.
func (l *Layer) Position(ctx context.Context) (int, error) {
	if err := l.alive(); err != nil {
		return -1, err
	}
	pos, err := indexOf(l.clip.LayerIDs(ctx), l.id)
	if errors.Is(err, george.ErrNoObject) {
		return -1, notFound("layer", "%d in %s", l.id, l.clip)
	}
	return pos, err
}

// Duplicate duplicates the layer under a new name. The copy becomes current.
func (l *Layer) Duplicate(ctx context.Context, name string) (*Layer, error) {
	id, err := WithCurrentValue(ctx, l, func(ctx context.Context) (int, error) {
		return george.LayerDuplicate(ctx, l.client(), name)
	})
	if err != nil {
		return nil, err
	}
	return l.clip.Layer(id), nil
}

// Remove deletes the layer and marks the facade removed.
func (l *Layer) Remove(ctx context.Context) error {
	if err := l.alive(); err != nil {
		return err
	}
	err := WithCurrent(ctx, l.clip, func(ctx context.Context) error {
		return george.LayerKill(ctx, l.client(), l.id)
	})
	if err != nil {
		return err
	}
	l.markRemoved()
	return nil
}
