package tvpaint

import (
	"context"
	"fmt"
	"iter"

	"github.com/johhnry/gotvpaint/george"
)

// ProjectSound is a sound track of a project, addressed by track index.
// Removing a track shifts the index of the tracks after it.
type ProjectSound struct {
	removable
	project *Project
	track   int
}

// Track returns the track index.
func (s *ProjectSound) Track() int { return s.track }

// Project returns the sound's project.
func (s *ProjectSound) Project() *Project { return s.project }

func (s *ProjectSound) String() string { return fmt.Sprintf("project sound %d", s.track) }

func (s *ProjectSound) alive() error {
	if err := s.check(s.track); err != nil {
		return err
	}
	return s.project.alive()
}

// Info describes the track.
func (s *ProjectSound) Info(ctx context.Context) (george.SoundInfo, error) {
	if err := s.alive(); err != nil {
		return george.SoundInfo{}, err
	}
	return george.SoundProjectInfo(ctx, s.project.client, s.project.id, s.track)
}

// Reload reloads the track from its file.
func (s *ProjectSound) Reload(ctx context.Context) error {
	if err := s.alive(); err != nil {
		return err
	}
	return george.SoundProjectReload(ctx, s.project.client, s.project.id, s.track)
}

// Adjust changes the track parameters.
func (s *ProjectSound) Adjust(ctx context.Context, adj george.SoundAdjust) error {
	if err := s.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, s.project, func(ctx context.Context) error {
		return george.SoundProjectAdjust(ctx, s.project.client, s.track, adj)
	})
}

// Remove deletes the track and marks the facade removed.
func (s *ProjectSound) Remove(ctx context.Context) error {
	if err := s.alive(); err != nil {
		return err
	}
	err := WithCurrent(ctx, s.project, func(ctx context.Context) error {
		return george.SoundProjectRemove(ctx, s.project.client, s.track)
	})
	if err != nil {
		return err
	}
	s.markRemoved()
	return nil
}

// ClipSound is a sound track of a clip, addressed by track index.
type ClipSound struct {
	removable
	clip  *Clip
	track int
}

// Track returns the track index.
func (s *ClipSound) Track() int { return s.track }

// Clip returns the sound's clip.
func (s *ClipSound) Clip() *Clip { return s.clip }

func (s *ClipSound) String() string { return fmt.Sprintf("clip sound %d", s.track) }

func (s *ClipSound) alive() error {
	if err := s.check(s.track); err != nil {
		return err
	}
	return s.clip.alive()
}

// Info describes the track.
func (s *ClipSound) Info(ctx context.Context) (george.SoundInfo, error) {
	if err := s.alive(); err != nil {
		return george.SoundInfo{}, err
	}
	return WithCurrentValue(ctx, s.clip.Project(), func(ctx context.Context) (george.SoundInfo, error) {
		return george.SoundClipInfo(ctx, s.clip.client(), s.clip.id, s.track)
	})
}

// Reload reloads the track from its file.
func (s *ClipSound) Reload(ctx context.Context) error {
	if err := s.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, s.clip.Project(), func(ctx context.Context) error {
		return george.SoundClipReload(ctx, s.clip.client(), s.clip.id, s.track)
	})
}

// Adjust changes the track parameters.
func (s *ClipSound) Adjust(ctx context.Context, adj george.SoundAdjust) error {
	if err := s.alive(); err != nil {
		return err
	}
	return WithCurrent(ctx, s.clip, func(ctx context.Context) error {
		return george.SoundClipAdjust(ctx, s.clip.client(), s.track, adj)
	})
}

// Remove deletes the track and marks the facade removed.
func (s *ClipSound) Remove(ctx context.Context) error {
	if err := s.alive(); err != nil {
		return err
	}
	err := WithCurrent(ctx, s.clip, func(ctx context.Context) error {
		return george.SoundClipRemove(ctx, s.clip.client(), s.track)
	})
	if err != nil {
		return err
	}
	s.markRemoved()
	return nil
}

func lastSound[T any](seq iter.Seq2[T, error]) (T, error) {
	var (
		last  T
		found bool
	)
	for s, err := range seq {
		if err != nil {
			return last, err
		}
		last, found = s, true
	}
	if !found {
		return last, notFound("sound", "track after adding")
	}
	return last, nil
}
