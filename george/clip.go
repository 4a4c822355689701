package george

import "context"

// ClipInfo is the decoded reply of tv_ClipInfo.
type ClipInfo struct {
	ID          int
	FirstFrame  int
	LastFrame   int
	Name        string
	IsVisible   bool
	IsSelected  bool
	ColorIndex  int
	MarkIn      int
	MarkOut     int
	CameraFrame bool
}

// FrameCount returns the number of frames between first and last frame.
func (i ClipInfo) FrameCount() int {
	return i.LastFrame - i.FirstFrame + 1
}

var clipInfoSchema = Schema{
	Skipped("id"),
	IntField("first_frame"),
	IntField("last_frame"),
	StringField("name"),
	BoolField("is_visible"),
	BoolField("is_selected"),
	IntField("color_index"),
	IntField("mark_in"),
	IntField("mark_out"),
	BoolField("camera_frame"),
}

// ClipEnumID returns the id of the clip at position in a scene. ErrNoObject
// means there is no clip there.
func ClipEnumID(ctx context.Context, c *Client, sceneID, position int) (int, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ClipEnumId", sceneID, position).Errors(SentinelNone),
		WithKind(ErrNoObject), WithMessage("No clip at provided position"))
	if err != nil {
		return 0, err
	}
	return reply.Int()
}

// ClipCurrentID returns the id of the current clip.
func ClipCurrentID(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_ClipCurrentId"))
}

// ClipSelect makes a clip current. Its scene becomes current too.
func ClipSelect(ctx context.Context, c *Client, clipID int) error {
	return Exec(ctx, c, NewCommand("tv_ClipSelect", clipID))
}

// GetClipInfo returns the description of a clip.
func GetClipInfo(ctx context.Context, c *Client, clipID int) (ClipInfo, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ClipInfo", clipID).Errors(SentinelEmpty),
		WithKind(ErrNoObject), WithMessage("No clip with provided id"))
	if err != nil {
		return ClipInfo{}, err
	}
	f, err := ParseFields(string(reply), clipInfoSchema)
	if err != nil {
		return ClipInfo{}, err
	}
	return ClipInfo{
		ID:          clipID,
		FirstFrame:  f.Int("first_frame"),
		LastFrame:   f.Int("last_frame"),
		Name:        f.String("name"),
		IsVisible:   f.Bool("is_visible"),
		IsSelected:  f.Bool("is_selected"),
		ColorIndex:  f.Int("color_index"),
		MarkIn:      f.Int("mark_in"),
		MarkOut:     f.Int("mark_out"),
		CameraFrame: f.Bool("camera_frame"),
	}, nil
}

// ClipName returns the name of a clip.
func ClipName(ctx context.Context, c *Client, clipID int) (string, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ClipName", clipID).Errors(SentinelEmpty),
		WithKind(ErrNoObject), WithMessage("No clip with provided id"))
	return reply.Unquote(), err
}

// SetClipName renames a clip.
func SetClipName(ctx context.Context, c *Client, clipID int, name string) error {
	return Undoable(ctx, c, "SetClipName", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ClipName", clipID, name))
	})
}

// ClipNew creates a clip after the current clip, in the current scene.
func ClipNew(ctx context.Context, c *Client, name string) error {
	return Undoable(ctx, c, "ClipNew", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ClipNew", name))
	})
}

// ClipDuplicate duplicates a clip. The copy is inserted right after it.
func ClipDuplicate(ctx context.Context, c *Client, clipID int) error {
	return Undoable(ctx, c, "ClipDuplicate", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ClipDuplicate", clipID))
	})
}

// ClipClose removes a clip.
func ClipClose(ctx context.Context, c *Client, clipID int) error {
	return Undoable(ctx, c, "ClipClose", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ClipClose", clipID))
	})
}

// ClipMove moves a clip to position in a scene.
func ClipMove(ctx context.Context, c *Client, clipID, sceneID, position int) error {
	return Undoable(ctx, c, "ClipMove", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ClipMove", clipID, sceneID, position))
	})
}
