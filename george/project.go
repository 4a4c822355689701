package george

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectInfo is the decoded reply of tv_ProjectInfo. ID is not part of the
// reply; it is the id the caller asked about.
type ProjectInfo struct {
	ID               string
	Path             string
	Width            int
	Height           int
	PixelAspectRatio float64
	FrameRate        float64
	FieldOrder       FieldOrder
	StartFrame       int
}

var projectInfoSchema = Schema{
	Skipped("id"),
	PathField("path"),
	IntField("width"),
	IntField("height"),
	FloatField("pixel_aspect_ratio"),
	FloatField("frame_rate"),
	EnumField("field_order", FieldOrders...),
	IntField("start_frame"),
}

// NewProjectOptions are the creation parameters of tv_ProjectNew.
type NewProjectOptions struct {
	Width            int
	Height           int
	PixelAspectRatio float64
	FrameRate        float64
	FieldOrder       FieldOrder
	StartFrame       int
}

// DefaultNewProjectOptions returns a 1920x1080 square-pixel 24 fps project.
func DefaultNewProjectOptions() NewProjectOptions {
	return NewProjectOptions{
		Width:            1920,
		Height:           1080,
		PixelAspectRatio: 1.0,
		FrameRate:        24.0,
		FieldOrder:       FieldOrderNone,
		StartFrame:       1,
	}
}

// ProjectNew creates a project and returns its id. An empty reply means the
// project was created but may be corrupted: the id is returned with a
// *PartialSuccessError.
func ProjectNew(ctx context.Context, c *Client, path string, opts NewProjectOptions) (string, error) {
	reply, err := Advisory(ctx, c, NewCommand("tv_ProjectNew",
		Path(path),
		opts.Width,
		opts.Height,
		opts.PixelAspectRatio,
		opts.FrameRate,
		opts.FieldOrder,
		opts.StartFrame,
	).Errors(SentinelEmpty), "Project created but may be corrupted")
	return reply.Unquote(), err
}

// LoadProject loads a file as a project. When silent is non-nil it is passed
// as the "silent" option. Returns the new project's id.
func LoadProject(ctx context.Context, c *Client, path string, silent *bool) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &ArgumentError{Argument: "path", Message: "project not found at " + NormalizePath(path)}
	}
	args := []any{Path(path)}
	if silent != nil {
		args = append(args, "silent", *silent)
	}
	reply, err := Strict(ctx, c, NewCommand("tv_LoadProject", args...).Errors(Code(-1)),
		WithKind(ErrInvalidTarget), WithMessage("Invalid format"))
	return reply.Unquote(), err
}

// SaveProject saves the current project.
func SaveProject(ctx context.Context, c *Client, path string) error {
	if err := requireParentDir(path); err != nil {
		return err
	}
	return Exec(ctx, c, NewCommand("tv_SaveProject", Path(path)))
}

// ProjectDuplicate duplicates the current project.
func ProjectDuplicate(ctx context.Context, c *Client) error {
	return Exec(ctx, c, NewCommand("tv_ProjectDuplicate").Errors(Code(0)),
		WithMessage("Can't duplicate the current project"))
}

// ProjectEnumID returns the id of the project at position. ErrNoObject means
// there is no project there.
func ProjectEnumID(ctx context.Context, c *Client, position int) (string, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ProjectEnumId", position).Errors(SentinelNone),
		WithKind(ErrNoObject), WithMessage("No project at provided position"))
	return reply.Unquote(), err
}

// ProjectCurrentID returns the id of the current project.
func ProjectCurrentID(ctx context.Context, c *Client) (string, error) {
	reply, err := c.Send(ctx, NewCommand("tv_ProjectCurrentId"))
	return reply.Unquote(), err
}

// GetProjectInfo returns the description of a project.
func GetProjectInfo(ctx context.Context, c *Client, projectID string) (ProjectInfo, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ProjectInfo", projectID).Errors(SentinelEmpty),
		WithKind(ErrNoObject))
	if err != nil {
		return ProjectInfo{}, err
	}
	f, err := ParseFields(string(reply), projectInfoSchema)
	if err != nil {
		return ProjectInfo{}, err
	}
	return ProjectInfo{
		ID:               projectID,
		Path:             f.String("path"),
		Width:            f.Int("width"),
		Height:           f.Int("height"),
		PixelAspectRatio: f.Float("pixel_aspect_ratio"),
		FrameRate:        f.Float("frame_rate"),
		FieldOrder:       Get[FieldOrder](f, "field_order"),
		StartFrame:       f.Int("start_frame"),
	}, nil
}

// GetProjectName returns the save path of the current project.
func GetProjectName(ctx context.Context, c *Client) (string, error) {
	reply, err := c.Send(ctx, NewCommand("tv_GetProjectName"))
	return reply.Unquote(), err
}

// ProjectSelect makes the given project current.
func ProjectSelect(ctx context.Context, c *Client, projectID string) error {
	return Exec(ctx, c, NewCommand("tv_ProjectSelect", projectID))
}

// ProjectClose closes the given project.
func ProjectClose(ctx context.Context, c *Client, projectID string) error {
	return Exec(ctx, c, NewCommand("tv_ProjectClose", projectID))
}

// ResizeProject resizes the current project. The host gives the resized
// project a new id.
func ResizeProject(ctx context.Context, c *Client, width, height int) error {
	return Exec(ctx, c, NewCommand("tv_ResizeProject", width, height))
}

// ResizePage creates a resized copy of the current project and closes it.
func ResizePage(ctx context.Context, c *Client, width, height int, opt ResizeOption) error {
	return Exec(ctx, c, NewCommand("tv_ResizePage", width, height, opt))
}

// GetWidth returns the current project width.
func GetWidth(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_GetWidth"))
}

// GetHeight returns the current project height.
func GetHeight(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_GetHeight"))
}

// GetRatio returns the current project pixel aspect ratio.
func GetRatio(ctx context.Context, c *Client) (float64, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_GetRatio").Errors(SentinelEmpty))
	if err != nil {
		return 0, err
	}
	return reply.Float()
}

// GetField returns the current project field order.
func GetField(ctx context.Context, c *Client) (FieldOrder, error) {
	reply, err := c.Send(ctx, NewCommand("tv_GetField"))
	if err != nil {
		return "", err
	}
	return ParseEnum("field_order", string(reply), FieldOrders...)
}

// SaveSequence renders the current project to exportPath, optionally limited
// to the [markIn, markOut] range.
func SaveSequence(ctx context.Context, c *Client, exportPath string, markInOut *[2]int) error {
	if err := requireParentDir(exportPath); err != nil {
		return err
	}
	args := []any{Path(exportPath)}
	if markInOut != nil {
		args = append(args, markInOut[0], markInOut[1])
	}
	return Exec(ctx, c, NewCommand("tv_SaveSequence", args...))
}

// ProjectSaveSequence renders the current project, through the camera when
// useCamera is set, optionally limited to a frame range.
func ProjectSaveSequence(ctx context.Context, c *Client, exportPath string, useCamera bool, startEnd *[2]int) error {
	args := []any{Path(exportPath)}
	if useCamera {
		args = append(args, "camera")
	}
	if startEnd != nil {
		args = append(args, startEnd[0], startEnd[1])
	}
	return Exec(ctx, c, NewCommand("tv_ProjectSaveSequence", args...).Errors(Code(-1)))
}

// ProjectRenderCamera renders a project through its camera into a new
// project and returns the new project's id.
func ProjectRenderCamera(ctx context.Context, c *Client, projectID string) (string, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_ProjectRenderCamera", projectID).Errors(SentinelError))
	return reply.Unquote(), err
}

// FrameRate returns the project and playback frame rates of the current project.
func FrameRate(ctx context.Context, c *Client) (project, playback float64, err error) {
	reply, err := c.Send(ctx, NewCommand("tv_FrameRate", 1, "info"))
	if err != nil {
		return 0, 0, err
	}
	f, err := ParseFields(string(reply), Schema{
		FloatField("project_fps"),
		FloatField("playback_fps"),
	})
	if err != nil {
		return 0, 0, err
	}
	return f.Float("project_fps"), f.Float("playback_fps"), nil
}

// SetProjectFrameRate sets the current project's frame rate, stretching the
// timing of existing images when timeStretch is set.
func SetProjectFrameRate(ctx context.Context, c *Client, fps float64, timeStretch bool) error {
	return Undoable(ctx, c, "SetProjectFrameRate", func(ctx context.Context) error {
		args := []any{fps}
		if timeStretch {
			args = append(args, "timestretch")
		}
		return Exec(ctx, c, NewCommand("tv_FrameRate", args...))
	})
}

// SetPreviewFrameRate sets the playback frame rate.
func SetPreviewFrameRate(ctx context.Context, c *Client, fps float64) error {
	return Undoable(ctx, c, "SetPreviewFrameRate", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_FrameRate", fps, "preview"))
	})
}

// ProjectCurrentFrame returns the current frame of the current project,
// relative to the current clip's mark in.
func ProjectCurrentFrame(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_ProjectCurrentFrame"))
}

// SetProjectCurrentFrame moves the current project to frame.
func SetProjectCurrentFrame(ctx context.Context, c *Client, frame int) (int, error) {
	return UndoableValue(ctx, c, "SetProjectCurrentFrame", func(ctx context.Context) (int, error) {
		return sendInt(ctx, c, NewCommand("tv_ProjectCurrentFrame", frame))
	})
}

// LoadPalette loads palettes from a file or directory.
func LoadPalette(ctx context.Context, c *Client, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &ArgumentError{Argument: "path", Message: "palette not found at " + NormalizePath(path)}
	}
	return Exec(ctx, c, NewCommand("tv_LoadPalette", Path(path)))
}

// SavePalette saves the current palette.
func SavePalette(ctx context.Context, c *Client, path string) error {
	if err := requireParentDir(path); err != nil {
		return err
	}
	return Exec(ctx, c, NewCommand("tv_SavePalette", Path(path)))
}

// ProjectSaveVideoDependencies saves the current project's video dependencies.
func ProjectSaveVideoDependencies(ctx context.Context, c *Client) error {
	return Undoable(ctx, c, "ProjectSaveVideoDependencies", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ProjectSaveVideoDependencies"))
	})
}

// ProjectSaveAudioDependencies saves the current project's audio dependencies.
func ProjectSaveAudioDependencies(ctx context.Context, c *Client) error {
	return Undoable(ctx, c, "ProjectSaveAudioDependencies", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_ProjectSaveAudioDependencies"))
	})
}

// HeaderField names one of the text fields of a project header.
type HeaderField string

const (
	HeaderInfo   HeaderField = "tv_ProjectHeaderInfo"
	HeaderAuthor HeaderField = "tv_ProjectHeaderAuthor"
	HeaderNotes  HeaderField = "tv_ProjectHeaderNotes"
)

// ProjectHeader reads a header text field of a project.
func ProjectHeader(ctx context.Context, c *Client, field HeaderField, projectID string) (string, error) {
	reply, err := Strict(ctx, c, NewCommand(string(field), projectID).Errors(SentinelError),
		WithKind(ErrNoObject), WithMessage("Invalid project id"))
	return reply.Unquote(), err
}

// SetProjectHeader writes a header text field of a project.
func SetProjectHeader(ctx context.Context, c *Client, field HeaderField, projectID, text string) error {
	return Undoable(ctx, c, "SetProjectHeader", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand(string(field), projectID, text).Errors(SentinelError),
			WithKind(ErrNoObject), WithMessage("Invalid project id"))
	})
}

// StartFrame returns the start frame of the current project.
func StartFrame(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_StartFrame"))
}

// SetStartFrame sets the start frame of the current project and returns the
// value the host applied.
func SetStartFrame(ctx context.Context, c *Client, frame int) (int, error) {
	return UndoableValue(ctx, c, "SetStartFrame", func(ctx context.Context) (int, error) {
		return sendInt(ctx, c, NewCommand("tv_StartFrame", frame))
	})
}

// Background is the background setting of a project. Colors holds one color
// in BackgroundColor mode and two in BackgroundCheck mode.
type Background struct {
	Mode   BackgroundMode
	Colors []RGBColor
}

// GetBackground returns the background of the current project.
func GetBackground(ctx context.Context, c *Client) (Background, error) {
	reply, err := c.Send(ctx, NewCommand("tv_Background"))
	if err != nil {
		return Background{}, err
	}
	mode, err := ParseFields(string(reply), Schema{EnumField("mode", BackgroundModes...)})
	if err != nil {
		return Background{}, err
	}

	bg := Background{Mode: Get[BackgroundMode](mode, "mode")}
	var schema Schema
	switch bg.Mode {
	case BackgroundNone:
		return bg, nil
	case BackgroundCheck:
		schema = Schema{StringField("mode"), RGBField("c1"), RGBField("c2")}
	default:
		schema = Schema{StringField("mode"), RGBField("c1")}
	}
	f, err := ParseFields(string(reply), schema)
	if err != nil {
		return Background{}, err
	}
	bg.Colors = append(bg.Colors, Get[RGBColor](f, "c1"))
	if f.Has("c2") {
		bg.Colors = append(bg.Colors, Get[RGBColor](f, "c2"))
	}
	return bg, nil
}

// SetBackground sets the background of the current project.
func SetBackground(ctx context.Context, c *Client, bg Background) error {
	args := []any{bg.Mode}
	switch bg.Mode {
	case BackgroundNone:
	case BackgroundCheck:
		if len(bg.Colors) != 2 {
			return &ArgumentError{Argument: "colors", Message: "check mode needs two colors"}
		}
		args = append(args, bg.Colors[0].Args()...)
		args = append(args, bg.Colors[1].Args()...)
	case BackgroundColor:
		if len(bg.Colors) != 1 {
			return &ArgumentError{Argument: "colors", Message: "color mode needs one color"}
		}
		args = append(args, bg.Colors[0].Args()...)
	default:
		return &ArgumentError{Argument: "mode", Message: fmt.Sprintf("unknown background mode %q", bg.Mode)}
	}
	return Undoable(ctx, c, "SetBackground", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_Background", args...))
	})
}

func sendInt(ctx context.Context, c *Client, cmd Command) (int, error) {
	reply, err := c.Send(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return reply.Int()
}

func requireParentDir(path string) error {
	parent := filepath.Dir(path)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return &ArgumentError{Argument: "path", Message: "parent folder does not exist: " + NormalizePath(parent)}
	}
	return nil
}
