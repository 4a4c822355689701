package tvpaint

import (
	"context"
	"errors"
	"iter"
	"path"
	"strings"

	"github.com/johhnry/gotvpaint/george"
)

// Project is an open TVPaint project. Project ids are opaque strings.
type Project struct {
	removable
	client *george.Client
	id     string
}

var _ Selectable = &Project{}

// ProjectFromID wraps a known project id. It does not call the host.
func ProjectFromID(c *george.Client, id string) *Project {
	return &Project{removable: removable{kind: "project"}, client: c, id: id}
}

// NewProject creates a project, which becomes current.
//
// When the host reports that the project may be corrupted, the project is
// returned together with an error matching george.ErrPartialSuccess.
func NewProject(ctx context.Context, c *george.Client, projectPath string, opts george.NewProjectOptions) (*Project, error) {
	id, err := george.ProjectNew(ctx, c, projectPath, opts)
	if errors.Is(err, george.ErrPartialSuccess) {
		// The reply carried no id; the new project is the current one.
		current, curErr := george.ProjectCurrentID(ctx, c)
		if curErr != nil {
			return nil, errors.Join(err, curErr)
		}
		return ProjectFromID(c, current), err
	}
	if err != nil {
		return nil, err
	}
	return ProjectFromID(c, id), nil
}

// LoadProject opens a project file.
func LoadProject(ctx context.Context, c *george.Client, projectPath string) (*Project, error) {
	silent := true
	id, err := george.LoadProject(ctx, c, projectPath, &silent)
	if err != nil {
		return nil, err
	}
	return ProjectFromID(c, id), nil
}

// CurrentProject returns the current project.
func CurrentProject(ctx context.Context, c *george.Client) (*Project, error) {
	id, err := george.ProjectCurrentID(ctx, c)
	if err != nil {
		return nil, err
	}
	if id == "" || id == george.SentinelNone.String() {
		return nil, notFound("project", "current")
	}
	return ProjectFromID(c, id), nil
}

// ProjectIDs enumerates the ids of the open projects.
func ProjectIDs(ctx context.Context, c *george.Client) iter.Seq2[string, error] {
	return Positions(ctx, func(ctx context.Context, pos int) (string, error) {
		return george.ProjectEnumID(ctx, c, pos)
	})
}

// Projects enumerates the open projects.
func Projects(ctx context.Context, c *george.Client) iter.Seq2[*Project, error] {
	return mapSeq(ProjectIDs(ctx, c), func(id string) *Project { return ProjectFromID(c, id) })
}

// FindProject returns the open project with the given id or name.
func FindProject(ctx context.Context, c *george.Client, idOrName string) (*Project, error) {
	for p, err := range Projects(ctx, c) {
		if err != nil {
			return nil, err
		}
		if p.id == idOrName {
			return p, nil
		}
		name, err := p.Name(ctx)
		if err != nil {
			return nil, err
		}
		if name == idOrName {
			return p, nil
		}
	}
	return nil, notFound("project", "%q", idOrName)
}

// ID returns the project id.
func (p *Project) ID() string { return p.id }

// Client returns the client the project talks through.
func (p *Project) Client() *george.Client { return p.client }

// Equal reports whether both facades designate the same project.
func (p *Project) Equal(other *Project) bool {
	return other != nil && p.id == other.id
}

func (p *Project) String() string { return "project " + p.id }

func (p *Project) alive() error {
	return p.check(p.id)
}

// IsCurrent reports whether the project is the current one.
func (p *Project) IsCurrent(ctx context.Context) (bool, error) {
	if err := p.alive(); err != nil {
		return false, err
	}
	current, err := george.ProjectCurrentID(ctx, p.client)
	if err != nil {
		return false, err
	}
	return current == p.id, nil
}

// MakeCurrent selects the project.
func (p *Project) MakeCurrent(ctx context.Context) error {
	return ensureCurrent(ctx, p.IsCurrent, func(ctx context.Context) error {
		return george.ProjectSelect(ctx, p.client, p.id)
	})
}

// Info describes the project.
func (p *Project) Info(ctx context.Context) (george.ProjectInfo, error) {
	if err := p.alive(); err != nil {
		return george.ProjectInfo{}, err
	}
	return george.GetProjectInfo(ctx, p.client, p.id)
}

// Path returns the project's file path.
func (p *Project) Path(ctx context.Context) (string, error) {
	info, err := p.Info(ctx)
	return info.Path, err
}

// Name returns the project's file name without extension.
func (p *Project) Name(ctx context.Context) (string, error) {
	projectPath, err := p.Path(ctx)
	if err != nil {
		return "", err
	}
	base := path.Base(projectPath)
	return strings.TrimSuffix(base, path.Ext(base)), nil
}

// Width returns the project width in pixels.
func (p *Project) Width(ctx context.Context) (int, error) {
	info, err := p.Info(ctx)
	return info.Width, err
}

// Height returns the project height in pixels.
func (p *Project) Height(ctx context.Context) (int, error) {
	info, err := p.Info(ctx)
	return info.Height, err
}

// FrameRate returns the project frame rate.
func (p *Project) FrameRate(ctx context.Context) (float64, error) {
	return WithCurrentValue(ctx, p, func(ctx context.Context) (float64, error) {
		fps, _, err := george.FrameRate(ctx, p.client)
		return fps, err
	})
}

// SetFrameRate changes the project frame rate, stretching existing timing
// when timeStretch is set.
func (p *Project) SetFrameRate(ctx context.Context, fps float64, timeStretch bool) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SetProjectFrameRate(ctx, p.client, fps, timeStretch)
	})
}

// PlaybackFrameRate returns the preview frame rate.
func (p *Project) PlaybackFrameRate(ctx context.Context) (float64, error) {
	return WithCurrentValue(ctx, p, func(ctx context.Context) (float64, error) {
		_, fps, err := george.FrameRate(ctx, p.client)
		return fps, err
	})
}

// SetPlaybackFrameRate changes the preview frame rate.
func (p *Project) SetPlaybackFrameRate(ctx context.Context, fps float64) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SetPreviewFrameRate(ctx, p.client, fps)
	})
}

// StartFrame returns the number of the project's first frame.
func (p *Project) StartFrame(ctx context.Context) (int, error) {
	return WithCurrentValue(ctx, p, func(ctx context.Context) (int, error) {
		return george.StartFrame(ctx, p.client)
	})
}

// SetStartFrame changes the number of the project's first frame.
func (p *Project) SetStartFrame(ctx context.Context, frame int) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		_, err := george.SetStartFrame(ctx, p.client, frame)
		return err
	})
}

// CurrentFrame returns the project's current frame.
func (p *Project) CurrentFrame(ctx context.Context) (int, error) {
	return WithCurrentValue(ctx, p, func(ctx context.Context) (int, error) {
		return george.ProjectCurrentFrame(ctx, p.client)
	})
}

// SetCurrentFrame moves the project to frame.
func (p *Project) SetCurrentFrame(ctx context.Context, frame int) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		_, err := george.SetProjectCurrentFrame(ctx, p.client, frame)
		return err
	})
}

// Background returns the project background.
func (p *Project) Background(ctx context.Context) (george.Background, error) {
	return WithCurrentValue(ctx, p, func(ctx context.Context) (george.Background, error) {
		return george.GetBackground(ctx, p.client)
	})
}

// SetBackground changes the project background.
func (p *Project) SetBackground(ctx context.Context, bg george.Background) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SetBackground(ctx, p.client, bg)
	})
}

// Header reads one of the header text fields.
func (p *Project) Header(ctx context.Context, field george.HeaderField) (string, error) {
	if err := p.alive(); err != nil {
		return "", err
	}
	return george.ProjectHeader(ctx, p.client, field, p.id)
}

// SetHeader writes one of the header text fields.
func (p *Project) SetHeader(ctx context.Context, field george.HeaderField, text string) error {
	if err := p.alive(); err != nil {
		return err
	}
	return george.SetProjectHeader(ctx, p.client, field, p.id, text)
}

// Save saves the project to projectPath.
func (p *Project) Save(ctx context.Context, projectPath string) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SaveProject(ctx, p.client, projectPath)
	})
}

// Render exports the project as an image sequence or movie, optionally
// through the camera and limited to a frame range.
func (p *Project) Render(ctx context.Context, exportPath string, useCamera bool, startEnd *[2]int) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.ProjectSaveSequence(ctx, p.client, exportPath, useCamera, startEnd)
	})
}

// RenderCamera renders the project through its camera into a new project.
func (p *Project) RenderCamera(ctx context.Context) (*Project, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	id, err := george.ProjectRenderCamera(ctx, p.client, p.id)
	if err != nil {
		return nil, err
	}
	return ProjectFromID(p.client, id), nil
}

// LoadPalette loads palettes into the project.
func (p *Project) LoadPalette(ctx context.Context, palettePath string) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.LoadPalette(ctx, p.client, palettePath)
	})
}

// SavePalette saves the current palette of the project.
func (p *Project) SavePalette(ctx context.Context, palettePath string) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SavePalette(ctx, p.client, palettePath)
	})
}

// SaveDependencies saves the project's video and audio dependencies.
func (p *Project) SaveDependencies(ctx context.Context) error {
	return WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.Undoable(ctx, p.client, "Project.SaveDependencies", func(ctx context.Context) error {
			if err := george.ProjectSaveVideoDependencies(ctx, p.client); err != nil {
				return err
			}
			return george.ProjectSaveAudioDependencies(ctx, p.client)
		})
	})
}

// Duplicate duplicates the project. The copy becomes current.
func (p *Project) Duplicate(ctx context.Context) (*Project, error) {
	err := WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.ProjectDuplicate(ctx, p.client)
	})
	if err != nil {
		return nil, err
	}
	return CurrentProject(ctx, p.client)
}

// Resize resizes the project. The host gives the resized project a new id,
// so the receiver is marked removed and the new project is returned.
func (p *Project) Resize(ctx context.Context, width, height int) (*Project, error) {
	err := WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.ResizeProject(ctx, p.client, width, height)
	})
	if err != nil {
		return nil, err
	}
	p.markRemoved()
	return CurrentProject(ctx, p.client)
}

// Close closes the project and marks the facade removed.
func (p *Project) Close(ctx context.Context) error {
	if err := p.alive(); err != nil {
		return err
	}
	if err := george.ProjectClose(ctx, p.client, p.id); err != nil {
		return err
	}
	p.markRemoved()
	return nil
}

// Remove is Close.
func (p *Project) Remove(ctx context.Context) error {
	return p.Close(ctx)
}

// Scene wraps a known scene id of the project. It does not call the host.
func (p *Project) Scene(id int) *Scene {
	return &Scene{removable: removable{kind: "scene"}, project: p, id: id}
}

// SceneIDs enumerates the scene ids of the project in order.
func (p *Project) SceneIDs(ctx context.Context) iter.Seq2[int, error] {
	if err := p.alive(); err != nil {
		return failed[int](err)
	}
	return within(ctx, p, func(ctx context.Context, pos int) (int, error) {
		return george.SceneEnumID(ctx, p.client, pos)
	})
}

// Scenes enumerates the scenes of the project in order.
func (p *Project) Scenes(ctx context.Context) iter.Seq2[*Scene, error] {
	return mapSeq(p.SceneIDs(ctx), p.Scene)
}

// GetScene returns the scene with the given id.
func (p *Project) GetScene(ctx context.Context, id int) (*Scene, error) {
	for sceneID, err := range p.SceneIDs(ctx) {
		if err != nil {
			return nil, err
		}
		if sceneID == id {
			return p.Scene(id), nil
		}
	}
	return nil, notFound("scene", "%d in %s", id, p)
}

// CurrentScene returns the current scene of the project.
func (p *Project) CurrentScene(ctx context.Context) (*Scene, error) {
	id, err := WithCurrentValue(ctx, p, func(ctx context.Context) (int, error) {
		return george.SceneCurrentID(ctx, p.client)
	})
	if err != nil {
		return nil, err
	}
	return p.Scene(id), nil
}

// AddScene creates a scene, with one clip, after the current scene. The new
// scene becomes current.
func (p *Project) AddScene(ctx context.Context) (*Scene, error) {
	err := WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SceneNew(ctx, p.client)
	})
	if err != nil {
		return nil, err
	}
	return p.CurrentScene(ctx)
}

// CurrentClip returns the current clip of the project.
func (p *Project) CurrentClip(ctx context.Context) (*Clip, error) {
	scene, err := p.CurrentScene(ctx)
	if err != nil {
		return nil, err
	}
	id, err := george.ClipCurrentID(ctx, p.client)
	if err != nil {
		return nil, err
	}
	return scene.Clip(id), nil
}

// Sound wraps a project sound track. It does not call the host.
func (p *Project) Sound(track int) *ProjectSound {
	return &ProjectSound{removable: removable{kind: "project sound"}, project: p, track: track}
}

// Sounds enumerates the project's sound tracks.
func (p *Project) Sounds(ctx context.Context) iter.Seq2[*ProjectSound, error] {
	if err := p.alive(); err != nil {
		return failed[*ProjectSound](err)
	}
	tracks := soundTracks(ctx, nil, func(ctx context.Context, track int) error {
		_, err := george.SoundProjectInfo(ctx, p.client, p.id, track)
		return err
	})
	return mapSeq(tracks, p.Sound)
}

// AddSound adds a sound track to the project.
func (p *Project) AddSound(ctx context.Context, soundPath string) (*ProjectSound, error) {
	err := WithCurrent(ctx, p, func(ctx context.Context) error {
		return george.SoundProjectNew(ctx, p.client, soundPath)
	})
	if err != nil {
		return nil, err
	}
	return lastSound(p.Sounds(ctx))
}
