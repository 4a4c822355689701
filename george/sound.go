package george

import (
	"context"
	"os"
)

// Fades are the fade in and fade out bounds of a sound track. They are sent
// as a group of four.
type Fades struct {
	InStart, InStop, OutStart, OutStop float64
}

// SoundAdjust holds the optional parameters of tv_SoundProjectAdjust and
// tv_SoundClipAdjust. The host reads them in field order, so a value is only
// sent when every earlier one is set too.
type SoundAdjust struct {
	Mute       *bool
	Volume     *float64
	Offset     *float64
	Fades      *Fades
	ColorIndex *int
}

func (a SoundAdjust) args() []any {
	var fades any
	if a.Fades != nil {
		fades = *a.Fades
	}
	present := OptionalArgs(opt(a.Mute), opt(a.Volume), opt(a.Offset), fades, opt(a.ColorIndex))

	out := make([]any, 0, len(present)+3)
	for _, v := range present {
		if f, ok := v.(Fades); ok {
			out = append(out, f.InStart, f.InStop, f.OutStart, f.OutStop)
			continue
		}
		out = append(out, v)
	}
	return out
}

// opt turns a nil pointer into an untyped nil for OptionalArgs.
func opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// soundCommands names the George commands of one sound owner kind.
type soundCommands struct {
	info, add, remove, reload, adjust string
}

var (
	projectSoundCommands = soundCommands{
		info:   "tv_SoundProjectInfo",
		add:    "tv_SoundProjectNew",
		remove: "tv_SoundProjectRemove",
		reload: "tv_SoundProjectReload",
		adjust: "tv_SoundProjectAdjust",
	}
	clipSoundCommands = soundCommands{
		info:   "tv_SoundClipInfo",
		add:    "tv_SoundClipNew",
		remove: "tv_SoundClipRemove",
		reload: "tv_SoundClipReload",
		adjust: "tv_SoundClipAdjust",
	}
)

// soundCodes: -1 means the owning project or clip does not exist, -2 that
// the track index is out of range.
var soundCodes = []MapOption{
	WithCodeKind(-1, ErrNoObject),
	WithCodeKind(-2, ErrInvalidTarget),
	WithCodeKind(-3, ErrFileNotFound),
}

func (s soundCommands) getInfo(ctx context.Context, c *Client, ownerID any, track int) (SoundInfo, error) {
	reply, err := Strict(ctx, c, NewCommand(s.info, ownerID, track).Errors(Code(-1), Code(-2), Code(-3)), soundCodes...)
	if err != nil {
		return SoundInfo{}, err
	}
	return parseSoundInfo(reply)
}

func (s soundCommands) addTrack(ctx context.Context, c *Client, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &ArgumentError{Argument: "path", Message: "sound file not found at " + NormalizePath(path)}
	}
	return Undoable(ctx, c, s.add, func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand(s.add, Path(path)).Errors(Code(-1), Code(-3), Code(-4)), soundCodes...)
	})
}

func (s soundCommands) removeTrack(ctx context.Context, c *Client, track int) error {
	return Undoable(ctx, c, s.remove, func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand(s.remove, track).Errors(Code(-2)), soundCodes...)
	})
}

func (s soundCommands) reloadTrack(ctx context.Context, c *Client, ownerID any, track int) error {
	return Undoable(ctx, c, s.reload, func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand(s.reload, ownerID, track).Errors(Code(-1), Code(-2), Code(-3)), soundCodes...)
	})
}

func (s soundCommands) adjustTrack(ctx context.Context, c *Client, track int, adj SoundAdjust) error {
	args := append([]any{track}, adj.args()...)
	return Undoable(ctx, c, s.adjust, func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand(s.adjust, args...).Errors(Code(-2), Code(-3)), soundCodes...)
	})
}

// SoundProjectInfo describes a sound track of a project.
func SoundProjectInfo(ctx context.Context, c *Client, projectID string, track int) (SoundInfo, error) {
	return projectSoundCommands.getInfo(ctx, c, projectID, track)
}

// SoundProjectNew adds a sound track to the current project.
func SoundProjectNew(ctx context.Context, c *Client, path string) error {
	return projectSoundCommands.addTrack(ctx, c, path)
}

// SoundProjectRemove removes a sound track of the current project.
func SoundProjectRemove(ctx context.Context, c *Client, track int) error {
	return projectSoundCommands.removeTrack(ctx, c, track)
}

// SoundProjectReload reloads a project sound track from its file.
func SoundProjectReload(ctx context.Context, c *Client, projectID string, track int) error {
	return projectSoundCommands.reloadTrack(ctx, c, projectID, track)
}

// SoundProjectAdjust changes the parameters of a sound track of the current
// project.
func SoundProjectAdjust(ctx context.Context, c *Client, track int, adj SoundAdjust) error {
	return projectSoundCommands.adjustTrack(ctx, c, track, adj)
}

// SoundClipInfo describes a sound track of a clip.
func SoundClipInfo(ctx context.Context, c *Client, clipID, track int) (SoundInfo, error) {
	return clipSoundCommands.getInfo(ctx, c, clipID, track)
}

// SoundClipNew adds a sound track to the current clip.
func SoundClipNew(ctx context.Context, c *Client, path string) error {
	return clipSoundCommands.addTrack(ctx, c, path)
}

// SoundClipRemove removes a sound track of the current clip.
func SoundClipRemove(ctx context.Context, c *Client, track int) error {
	return clipSoundCommands.removeTrack(ctx, c, track)
}

// SoundClipReload reloads a clip sound track from its file.
func SoundClipReload(ctx context.Context, c *Client, clipID, track int) error {
	return clipSoundCommands.reloadTrack(ctx, c, clipID, track)
}

// SoundClipAdjust changes the parameters of a sound track of the current clip.
func SoundClipAdjust(ctx context.Context, c *Client, track int, adj SoundAdjust) error {
	return clipSoundCommands.adjustTrack(ctx, c, track, adj)
}
