package tvpaint

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/johhnry/gotvpaint/george"
)

// Scene is a scene of a project. Scene ids are meaningful within their
// project only.
type Scene struct {
	removable
	project *Project
	id      int
}

var _ Selectable = &Scene{}

// ID returns the scene id.
func (s *Scene) ID() int { return s.id }

// Project returns the scene's project.
func (s *Scene) Project() *Project { return s.project }

// Equal reports whether both facades designate the same scene.
func (s *Scene) Equal(other *Scene) bool {
	return other != nil && s.id == other.id && s.project.Equal(other.project)
}

func (s *Scene) String() string { return fmt.Sprintf("scene %d", s.id) }

func (s *Scene) client() *george.Client { return s.project.client }

func (s *Scene) alive() error {
	if err := s.check(s.id); err != nil {
		return err
	}
	return s.project.alive()
}

// IsCurrent reports whether the scene is the current scene of the current
// project.
func (s *Scene) IsCurrent(ctx context.Context) (bool, error) {
	if err := s.alive(); err != nil {
		return false, err
	}
	ok, err := s.project.IsCurrent(ctx)
	if err != nil || !ok {
		return false, err
	}
	current, err := george.SceneCurrentID(ctx, s.client())
	if err != nil {
		return false, err
	}
	return current == s.id, nil
}

// MakeCurrent makes the scene current by selecting its first clip; the host
// then selects the scene as the clip's parent.
func (s *Scene) MakeCurrent(ctx context.Context) error {
	return ensureCurrent(ctx, s.IsCurrent, func(ctx context.Context) error {
		if err := s.project.MakeCurrent(ctx); err != nil {
			return err
		}
		first, err := george.ClipEnumID(ctx, s.client(), s.id, 0)
		if err != nil {
			return fmt.Errorf("select %s: %w", s, err)
		}
		return george.ClipSelect(ctx, s.client(), first)
	})
}

// Position returns the scene's current position in its project.
func (s *Scene) Position(ctx context.Context) (int, error) {
	if err := s.alive(); err != nil {
		return -1, err
	}
	pos, err := indexOf(s.project.SceneIDs(ctx), s.id)
	if errors.Is(err, george.ErrNoObject) {
		return -1, notFound("scene", "%d in %s", s.id, s.project)
	}
	return pos, err
}

// SetPosition moves the scene to position in its project.
func (s *Scene) SetPosition(ctx context.Context, position int) error {
	if err := s.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, s.project, func(ctx context.Context) error {
		return george.SceneMove(ctx, s.client(), s.id, position)
	})
}

// Duplicate duplicates the scene. The copy is inserted right after the
// scene and the receiver stays valid.
func (s *Scene) Duplicate(ctx context.Context) (*Scene, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	id, err := george.UndoableValue(ctx, s.client(), "Scene.Duplicate", func(ctx context.Context) (int, error) {
		pos, err := s.Position(ctx)
		if err != nil {
			return 0, err
		}
		if err := george.SceneDuplicate(ctx, s.client(), s.id); err != nil {
			return 0, err
		}
		return george.SceneEnumID(ctx, s.client(), pos+1)
	})
	if err != nil {
		return nil, err
	}
	return s.project.Scene(id), nil
}

// Remove closes the scene and marks the facade removed.
func (s *Scene) Remove(ctx context.Context) error {
	if err := s.alive(); err != nil {
		return err
	}
	err := WithCurrent(ctx, s.project, func(ctx context.Context) error {
		return george.SceneClose(ctx, s.client(), s.id)
	})
	if err != nil {
		return err
	}
	s.markRemoved()
	return nil
}

// Clip wraps a known clip id of the scene. It does not call the host.
func (s *Scene) Clip(id int) *Clip {
	return &Clip{removable: removable{kind: "clip"}, scene: s, id: id}
}

// ClipIDs enumerates the clip ids of the scene in order.
func (s *Scene) ClipIDs(ctx context.Context) iter.Seq2[int, error] {
	if err := s.alive(); err != nil {
		return failed[int](err)
	}
	return within(ctx, s.project, func(ctx context.Context, pos int) (int, error) {
		return george.ClipEnumID(ctx, s.client(), s.id, pos)
	})
}

// Clips enumerates the clips of the scene in order.
func (s *Scene) Clips(ctx context.Context) iter.Seq2[*Clip, error] {
	return mapSeq(s.ClipIDs(ctx), s.Clip)
}

// GetClip returns the clip with the given id.
func (s *Scene) GetClip(ctx context.Context, id int) (*Clip, error) {
	for clipID, err := range s.ClipIDs(ctx) {
		if err != nil {
			return nil, err
		}
		if clipID == id {
			return s.Clip(id), nil
		}
	}
	return nil, notFound("clip", "%d in %s", id, s)
}

// ClipByName returns the first clip of the scene named name.
func (s *Scene) ClipByName(ctx context.Context, name string) (*Clip, error) {
	for clip, err := range s.Clips(ctx) {
		if err != nil {
			return nil, err
		}
		clipName, err := clip.Name(ctx)
		if err != nil {
			return nil, err
		}
		if clipName == name {
			return clip, nil
		}
	}
	return nil, notFound("clip", "%q in %s", name, s)
}

// AddClip creates a clip at the end of the scene. The new clip becomes
// current.
func (s *Scene) AddClip(ctx context.Context, name string) (*Clip, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	id, err := george.UndoableValue(ctx, s.client(), "Scene.AddClip", func(ctx context.Context) (int, error) {
		last, err := lastID(s.ClipIDs(ctx))
		if err != nil {
			return 0, err
		}
		if err := george.ClipSelect(ctx, s.client(), last); err != nil {
			return 0, err
		}
		if err := george.ClipNew(ctx, s.client(), name); err != nil {
			return 0, err
		}
		return george.ClipCurrentID(ctx, s.client())
	})
	if err != nil {
		return nil, err
	}
	return s.Clip(id), nil
}

// lastID returns the last id of seq.
func lastID(seq iter.Seq2[int, error]) (int, error) {
	last, found := 0, false
	for id, err := range seq {
		if err != nil {
			return 0, err
		}
		last, found = id, true
	}
	if !found {
		return 0, george.ErrNoObject
	}
	return last, nil
}
