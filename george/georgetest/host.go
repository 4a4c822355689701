package georgetest

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/johhnry/gotvpaint/george"
)

// Host is a simulated TVPaint instance.
//
// It keeps an ordered list of projects, each with scenes, clips, layers and
// sound tracks, and one current project, clip and layer. Scene, clip and
// layer ids are unique across the host and never reused. Undo stacks are
// counted, not replayed.
type Host struct {
	mu sync.Mutex

	projects      []*hostProject
	current       string
	nextProject   int
	nextID        int
	lines         []string
	overrides     map[string][]string
	undoDepth     int
	undoSteps     []string
	corruptNew    bool
	closed        bool
	savedSequence []string
}

type hostProject struct {
	id           string
	path         string
	width        int
	height       int
	ratio        float64
	fps          float64
	playbackFPS  float64
	field        string
	startFrame   int
	currentFrame int
	background   []string
	header       map[string]string
	sounds       []*hostSound
	scenes       []*hostScene
	currentClip  int
}

type hostScene struct {
	id    int
	clips []*hostClip
}

type hostClip struct {
	id           int
	name         string
	visible      bool
	color        int
	markIn       int
	markOut      int
	layers       []*hostLayer
	currentLayer int
	sounds       []*hostSound
}

type hostLayer struct {
	id         int
	name       string
	kind       string
	visible    bool
	opacity    int
	firstFrame int
	lastFrame  int
	stencil    string
}

type hostSound struct {
	path     string
	offset   float64
	volume   float64
	mute     bool
	fades    [4]float64
	soundIn  float64
	soundOut float64
	color    int
}

var _ george.Transport = &Host{}

// NewHost returns a host with no open project.
func NewHost() *Host {
	return &Host{
		nextID:    100,
		overrides: make(map[string][]string),
	}
}

// NewHostWithProject returns a host with one open project, made current. The
// project has one scene holding one clip holding one layer, with ids layer
// 101, clip 102 and scene 103.
func NewHostWithProject(projectPath string) (*Host, string) {
	h := NewHost()
	p := h.newProject(projectPath, 1920, 1080, 1, 24, "none", 1)
	return h, p.id
}

// Override makes the next commands named name reply with the given values
// instead of being executed, in order. Used to inject host failures.
func (h *Host) Override(name string, replies ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overrides[name] = append(h.overrides[name], replies...)
}

// CorruptNew makes tv_ProjectNew create the project but reply empty.
func (h *Host) CorruptNew(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.corruptNew = on
}

// Lines returns every command line received.
func (h *Host) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.lines)
}

// Count returns how many commands named name were received.
func (h *Host) Count(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, l := range h.lines {
		if commandName(l) == name {
			n++
		}
	}
	return n
}

// ResetLines forgets the received lines.
func (h *Host) ResetLines() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = nil
}

// UndoDepth returns the number of open undo stacks.
func (h *Host) UndoDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.undoDepth
}

// UndoSteps returns the names of the closed undo stacks, oldest first.
func (h *Host) UndoSteps() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.undoSteps)
}

// SavedSequences returns the export paths of every sequence render.
func (h *Host) SavedSequences() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.savedSequence)
}

// SceneIDs returns the scene ids of a project in order, bypassing the
// protocol.
func (h *Host) SceneIDs(projectID string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.project(projectID)
	if p == nil {
		return nil
	}
	ids := make([]int, 0, len(p.scenes))
	for _, s := range p.scenes {
		ids = append(ids, s.id)
	}
	return ids
}

// Close implements george.Transport.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Execute implements george.Transport.
func (h *Host) Execute(ctx context.Context, line string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", george.NewTransportError("abandoned", err)
	}
	if h.closed {
		return "", george.ErrNotConnected
	}
	h.lines = append(h.lines, line)

	tokens := george.Tokenize(line)
	if len(tokens) == 0 {
		return "", &george.HostError{Command: line, Message: "empty command"}
	}
	name, args := tokens[0], hostArgs(tokens[1:])

	if queue := h.overrides[name]; len(queue) > 0 {
		h.overrides[name] = queue[1:]
		return queue[0], nil
	}

	fn, ok := hostCommands[name]
	if !ok {
		return "", &george.HostError{Command: line, Message: "unknown command " + name}
	}
	return fn(h, args), nil
}

func commandName(line string) string {
	name, _, _ := strings.Cut(line, " ")
	return name
}

// hostArgs is a command argument list with lenient accessors; a missing or
// malformed argument reads as the zero value, as in George.
type hostArgs []string

func (x hostArgs) str(i int) string {
	if i < len(x) {
		return x[i]
	}
	return ""
}

func (x hostArgs) int(i int) int {
	v, _ := strconv.Atoi(x.str(i))
	return v
}

func (x hostArgs) float(i int) float64 {
	v, _ := strconv.ParseFloat(x.str(i), 64)
	return v
}

func (x hostArgs) has(i int) bool {
	return i < len(x)
}

var hostCommands map[string]func(h *Host, args hostArgs) string

func init() {
	hostCommands = map[string]func(h *Host, args hostArgs) string{
		"tv_UndoOpenStack":  (*Host).undoOpen,
		"tv_UndoCloseStack": (*Host).undoClose,

		"tv_ProjectNew":                   (*Host).projectNew,
		"tv_LoadProject":                  (*Host).loadProject,
		"tv_SaveProject":                  (*Host).saveProject,
		"tv_ProjectDuplicate":             (*Host).projectDuplicate,
		"tv_ProjectEnumId":                (*Host).projectEnumID,
		"tv_ProjectCurrentId":             (*Host).projectCurrentID,
		"tv_ProjectInfo":                  (*Host).projectInfo,
		"tv_GetProjectName":               (*Host).getProjectName,
		"tv_ProjectSelect":                (*Host).projectSelect,
		"tv_ProjectClose":                 (*Host).projectClose,
		"tv_ResizeProject":                (*Host).resizeProject,
		"tv_ResizePage":                   (*Host).resizeProject,
		"tv_GetWidth":                     (*Host).getWidth,
		"tv_GetHeight":                    (*Host).getHeight,
		"tv_GetRatio":                     (*Host).getRatio,
		"tv_GetField":                     (*Host).getField,
		"tv_SaveSequence":                 (*Host).saveSequence,
		"tv_ProjectSaveSequence":          (*Host).saveSequence,
		"tv_ProjectRenderCamera":          (*Host).renderCamera,
		"tv_FrameRate":                    (*Host).frameRate,
		"tv_ProjectCurrentFrame":          (*Host).currentFrame,
		"tv_LoadPalette":                  noop,
		"tv_SavePalette":                  noop,
		"tv_ProjectSaveVideoDependencies": noop,
		"tv_ProjectSaveAudioDependencies": noop,
		"tv_ProjectHeaderInfo":            headerCommand("info"),
		"tv_ProjectHeaderAuthor":          headerCommand("author"),
		"tv_ProjectHeaderNotes":           headerCommand("notes"),
		"tv_StartFrame":                   (*Host).startFrame,
		"tv_Background":                   (*Host).background,

		"tv_SoundProjectInfo":   (*Host).soundProjectInfo,
		"tv_SoundProjectNew":    (*Host).soundProjectNew,
		"tv_SoundProjectRemove": (*Host).soundProjectRemove,
		"tv_SoundProjectReload": (*Host).soundProjectReload,
		"tv_SoundProjectAdjust": (*Host).soundProjectAdjust,

		"tv_SceneEnumId":    (*Host).sceneEnumID,
		"tv_SceneCurrentId": (*Host).sceneCurrentID,
		"tv_SceneMove":      (*Host).sceneMove,
		"tv_SceneNew":       (*Host).sceneNew,
		"tv_SceneDuplicate": (*Host).sceneDuplicate,
		"tv_SceneClose":     (*Host).sceneClose,

		"tv_ClipEnumId":    (*Host).clipEnumID,
		"tv_ClipCurrentId": (*Host).clipCurrentID,
		"tv_ClipSelect":    (*Host).clipSelect,
		"tv_ClipInfo":      (*Host).clipInfo,
		"tv_ClipName":      (*Host).clipName,
		"tv_ClipNew":       (*Host).clipNew,
		"tv_ClipDuplicate": (*Host).clipDuplicate,
		"tv_ClipClose":     (*Host).clipClose,
		"tv_ClipMove":      (*Host).clipMove,

		"tv_SoundClipInfo":   (*Host).soundClipInfo,
		"tv_SoundClipNew":    (*Host).soundClipNew,
		"tv_SoundClipRemove": (*Host).soundClipRemove,
		"tv_SoundClipReload": (*Host).soundClipReload,
		"tv_SoundClipAdjust": (*Host).soundClipAdjust,

		"tv_LayerGetID":     (*Host).layerGetID,
		"tv_LayerCurrentID": (*Host).layerCurrentID,
		"tv_LayerSet":       (*Host).layerSet,
		"tv_LayerInfo":      (*Host).layerInfo,
		"tv_LayerCreate":    (*Host).layerCreate,
		"tv_LayerDuplicate": (*Host).layerDuplicate,
		"tv_LayerKill":      (*Host).layerKill,
		"tv_LayerRename":    (*Host).layerRename,
	}
}

func noop(*Host, hostArgs) string { return "" }

func quoted(s string) string { return `"` + s + `"` }

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Undo

func (h *Host) undoOpen(hostArgs) string {
	h.undoDepth++
	return ""
}

func (h *Host) undoClose(args hostArgs) string {
	if h.undoDepth == 0 {
		return "ERROR"
	}
	h.undoDepth--
	if h.undoDepth == 0 {
		h.undoSteps = append(h.undoSteps, args.str(0))
	}
	return ""
}

// Lookup helpers

func (h *Host) project(id string) *hostProject {
	for _, p := range h.projects {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (h *Host) currentProject() *hostProject {
	return h.project(h.current)
}

func (p *hostProject) scene(id int) (*hostScene, int) {
	for i, s := range p.scenes {
		if s.id == id {
			return s, i
		}
	}
	return nil, -1
}

func (p *hostProject) clip(id int) (*hostScene, *hostClip, int) {
	for _, s := range p.scenes {
		for i, c := range s.clips {
			if c.id == id {
				return s, c, i
			}
		}
	}
	return nil, nil, -1
}

func (p *hostProject) currentClipRef() (*hostScene, *hostClip) {
	s, c, _ := p.clip(p.currentClip)
	return s, c
}

// reselect moves the current clip to the first clip of the project when the
// current one is gone.
func (p *hostProject) reselect() {
	if _, c := p.currentClipRef(); c != nil {
		return
	}
	p.currentClip = 0
	for _, s := range p.scenes {
		if len(s.clips) > 0 {
			p.currentClip = s.clips[0].id
			return
		}
	}
}

func (c *hostClip) layer(id int) (*hostLayer, int) {
	for i, l := range c.layers {
		if l.id == id {
			return l, i
		}
	}
	return nil, -1
}

func (h *Host) currentClip() *hostClip {
	p := h.currentProject()
	if p == nil {
		return nil
	}
	_, c := p.currentClipRef()
	return c
}

func (h *Host) id() int {
	h.nextID++
	return h.nextID
}

func (h *Host) newLayer(name string) *hostLayer {
	return &hostLayer{
		id:         h.id(),
		name:       name,
		kind:       string(george.LayerImage),
		visible:    true,
		opacity:    100,
		firstFrame: 0,
		lastFrame:  0,
		stencil:    string(george.StencilOff),
	}
}

func (h *Host) newClip(name string) *hostClip {
	l := h.newLayer("Layer 1")
	return &hostClip{
		id:           h.id(),
		name:         name,
		visible:      true,
		markIn:       -1,
		markOut:      -1,
		layers:       []*hostLayer{l},
		currentLayer: l.id,
	}
}

// newScene allocates ids bottom-up: layer, then clip, then scene.
func (h *Host) newScene() *hostScene {
	c := h.newClip("Untitled")
	return &hostScene{id: h.id(), clips: []*hostClip{c}}
}

func (h *Host) newProject(projectPath string, width, height int, ratio, fps float64, field string, start int) *hostProject {
	h.nextProject++
	s := h.newScene()
	p := &hostProject{
		id:          fmt.Sprintf("P%04X", h.nextProject),
		path:        projectPath,
		width:       width,
		height:      height,
		ratio:       ratio,
		fps:         fps,
		playbackFPS: fps,
		field:       field,
		startFrame:  start,
		background:  []string{"none"},
		header:      make(map[string]string),
		scenes:      []*hostScene{s},
		currentClip: s.clips[0].id,
	}
	h.projects = append(h.projects, p)
	h.current = p.id
	return p
}

func (h *Host) copyLayer(l *hostLayer) *hostLayer {
	cp := *l
	cp.id = h.id()
	return &cp
}

func (h *Host) copyClip(c *hostClip) *hostClip {
	cp := *c
	cp.id = h.id()
	cp.layers = nil
	for _, l := range c.layers {
		nl := h.copyLayer(l)
		if l.id == c.currentLayer {
			cp.currentLayer = nl.id
		}
		cp.layers = append(cp.layers, nl)
	}
	cp.sounds = copySounds(c.sounds)
	return &cp
}

func (h *Host) copyScene(s *hostScene) *hostScene {
	cp := &hostScene{id: h.id()}
	for _, c := range s.clips {
		cp.clips = append(cp.clips, h.copyClip(c))
	}
	return cp
}

func copySounds(in []*hostSound) []*hostSound {
	out := make([]*hostSound, 0, len(in))
	for _, s := range in {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

// Projects

func (h *Host) projectNew(args hostArgs) string {
	field := args.str(5)
	if field == "" {
		field = "none"
	}
	p := h.newProject(args.str(0), args.int(1), args.int(2), args.float(3), args.float(4), field, args.int(6))
	if h.corruptNew {
		return ""
	}
	return p.id
}

func (h *Host) loadProject(args hostArgs) string {
	if path.Ext(george.NormalizePath(args.str(0))) != ".tvpp" {
		return "-1"
	}
	p := h.newProject(george.NormalizePath(args.str(0)), 1920, 1080, 1, 24, "none", 1)
	return p.id
}

func (h *Host) saveProject(args hostArgs) string {
	if p := h.currentProject(); p != nil {
		p.path = george.NormalizePath(args.str(0))
	}
	return ""
}

func (h *Host) projectDuplicate(hostArgs) string {
	src := h.currentProject()
	if src == nil {
		return "0"
	}
	h.nextProject++
	cp := *src
	cp.id = fmt.Sprintf("P%04X", h.nextProject)
	cp.header = make(map[string]string, len(src.header))
	for k, v := range src.header {
		cp.header[k] = v
	}
	cp.sounds = copySounds(src.sounds)
	cp.scenes = nil
	for _, s := range src.scenes {
		cp.scenes = append(cp.scenes, h.copyScene(s))
	}
	cp.currentClip = 0
	cp.reselect()
	h.projects = append(h.projects, &cp)
	h.current = cp.id
	return "1"
}

func (h *Host) projectEnumID(args hostArgs) string {
	pos := args.int(0)
	if pos < 0 || pos >= len(h.projects) {
		return "none"
	}
	return h.projects[pos].id
}

func (h *Host) projectCurrentID(hostArgs) string {
	if h.current == "" {
		return "none"
	}
	return h.current
}

func (h *Host) projectInfo(args hostArgs) string {
	p := h.project(args.str(0))
	if p == nil {
		return ""
	}
	return strings.Join([]string{
		quoted(p.path),
		strconv.Itoa(p.width),
		strconv.Itoa(p.height),
		formatFloat(p.ratio),
		formatFloat(p.fps),
		p.field,
		strconv.Itoa(p.startFrame),
	}, " ")
}

func (h *Host) getProjectName(hostArgs) string {
	if p := h.currentProject(); p != nil {
		return quoted(p.path)
	}
	return ""
}

func (h *Host) projectSelect(args hostArgs) string {
	if p := h.project(args.str(0)); p != nil {
		h.current = p.id
	}
	return ""
}

func (h *Host) projectClose(args hostArgs) string {
	id := args.str(0)
	h.projects = slices.DeleteFunc(h.projects, func(p *hostProject) bool { return p.id == id })
	if h.current == id {
		h.current = ""
		if len(h.projects) > 0 {
			h.current = h.projects[0].id
		}
	}
	return ""
}

// resizeProject resizes the current project, which then gets a new id.
func (h *Host) resizeProject(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	h.nextProject++
	p.id = fmt.Sprintf("P%04X", h.nextProject)
	p.width, p.height = args.int(0), args.int(1)
	h.current = p.id
	return ""
}

func (h *Host) getWidth(hostArgs) string {
	if p := h.currentProject(); p != nil {
		return strconv.Itoa(p.width)
	}
	return "0"
}

func (h *Host) getHeight(hostArgs) string {
	if p := h.currentProject(); p != nil {
		return strconv.Itoa(p.height)
	}
	return "0"
}

func (h *Host) getRatio(hostArgs) string {
	if p := h.currentProject(); p != nil {
		return formatFloat(p.ratio)
	}
	return ""
}

func (h *Host) getField(hostArgs) string {
	if p := h.currentProject(); p != nil {
		return p.field
	}
	return ""
}

func (h *Host) saveSequence(args hostArgs) string {
	h.savedSequence = append(h.savedSequence, george.NormalizePath(args.str(0)))
	return ""
}

func (h *Host) renderCamera(args hostArgs) string {
	src := h.project(args.str(0))
	if src == nil {
		return "ERROR"
	}
	p := h.newProject("", src.width, src.height, src.ratio, src.fps, src.field, src.startFrame)
	return p.id
}

func (h *Host) frameRate(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	switch {
	case args.str(1) == "info":
		return formatFloat(p.fps) + " " + formatFloat(p.playbackFPS)
	case args.str(1) == "preview":
		p.playbackFPS = args.float(0)
	case args.has(0):
		p.fps = args.float(0)
	}
	return ""
}

func (h *Host) currentFrame(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "0"
	}
	if args.has(0) {
		p.currentFrame = args.int(0)
	}
	return strconv.Itoa(p.currentFrame)
}

func headerCommand(key string) func(h *Host, args hostArgs) string {
	return func(h *Host, args hostArgs) string {
		p := h.project(args.str(0))
		if p == nil {
			return "ERROR"
		}
		if args.has(1) {
			p.header[key] = args.str(1)
			return ""
		}
		return quoted(p.header[key])
	}
}

func (h *Host) startFrame(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "0"
	}
	if args.has(0) {
		p.startFrame = args.int(0)
	}
	return strconv.Itoa(p.startFrame)
}

func (h *Host) background(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	if len(args) == 0 {
		return strings.Join(p.background, " ")
	}
	p.background = slices.Clone(args)
	return ""
}

// Sounds

func (s *hostSound) info() string {
	return strings.Join([]string{
		formatFloat(s.offset),
		formatFloat(s.volume),
		boolString(s.mute),
		formatFloat(s.fades[0]),
		formatFloat(s.fades[1]),
		formatFloat(s.fades[2]),
		formatFloat(s.fades[3]),
		quoted(s.path),
		formatFloat(s.soundIn),
		formatFloat(s.soundOut),
		strconv.Itoa(s.color),
	}, " ")
}

func soundInfo(sounds []*hostSound, track int) string {
	if track < 0 || track >= len(sounds) {
		return "-2"
	}
	return sounds[track].info()
}

func newSound(p string) *hostSound {
	return &hostSound{path: george.NormalizePath(p), volume: 1, soundOut: 1}
}

func removeSound(sounds *[]*hostSound, track int) string {
	if track < 0 || track >= len(*sounds) {
		return "-2"
	}
	*sounds = slices.Delete(*sounds, track, track+1)
	return ""
}

func adjustSound(sounds []*hostSound, args hostArgs) string {
	track := args.int(0)
	if track < 0 || track >= len(sounds) {
		return "-2"
	}
	s := sounds[track]
	if args.has(1) {
		s.mute = args.int(1) != 0
	}
	if args.has(2) {
		s.volume = args.float(2)
	}
	if args.has(3) {
		s.offset = args.float(3)
	}
	if args.has(7) {
		s.fades = [4]float64{args.float(4), args.float(5), args.float(6), args.float(7)}
	}
	if args.has(8) {
		s.color = args.int(8)
	}
	return ""
}

func (h *Host) soundProjectInfo(args hostArgs) string {
	p := h.project(args.str(0))
	if p == nil {
		return "-1"
	}
	return soundInfo(p.sounds, args.int(1))
}

func (h *Host) soundProjectNew(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "-1"
	}
	p.sounds = append(p.sounds, newSound(args.str(0)))
	return ""
}

func (h *Host) soundProjectRemove(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "-2"
	}
	return removeSound(&p.sounds, args.int(0))
}

func (h *Host) soundProjectReload(args hostArgs) string {
	p := h.project(args.str(0))
	if p == nil {
		return "-1"
	}
	if t := args.int(1); t < 0 || t >= len(p.sounds) {
		return "-2"
	}
	return ""
}

func (h *Host) soundProjectAdjust(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "-2"
	}
	return adjustSound(p.sounds, args)
}

func (h *Host) clipByID(id int) *hostClip {
	p := h.currentProject()
	if p == nil {
		return nil
	}
	_, c, _ := p.clip(id)
	return c
}

func (h *Host) soundClipInfo(args hostArgs) string {
	c := h.clipByID(args.int(0))
	if c == nil {
		return "-1"
	}
	return soundInfo(c.sounds, args.int(1))
}

func (h *Host) soundClipNew(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "-1"
	}
	c.sounds = append(c.sounds, newSound(args.str(0)))
	return ""
}

func (h *Host) soundClipRemove(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "-2"
	}
	return removeSound(&c.sounds, args.int(0))
}

func (h *Host) soundClipReload(args hostArgs) string {
	c := h.clipByID(args.int(0))
	if c == nil {
		return "-1"
	}
	if t := args.int(1); t < 0 || t >= len(c.sounds) {
		return "-2"
	}
	return ""
}

func (h *Host) soundClipAdjust(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "-2"
	}
	return adjustSound(c.sounds, args)
}

// Scenes

func (h *Host) sceneEnumID(args hostArgs) string {
	p := h.currentProject()
	pos := args.int(0)
	if p == nil || pos < 0 || pos >= len(p.scenes) {
		return "none"
	}
	return strconv.Itoa(p.scenes[pos].id)
}

func (h *Host) sceneCurrentID(hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "0"
	}
	s, _ := p.currentClipRef()
	if s == nil {
		return "0"
	}
	return strconv.Itoa(s.id)
}

func (h *Host) sceneMove(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	s, i := p.scene(args.int(0))
	if s == nil {
		return ""
	}
	p.scenes = slices.Delete(p.scenes, i, i+1)
	pos := min(max(args.int(1), 0), len(p.scenes))
	p.scenes = slices.Insert(p.scenes, pos, s)
	return ""
}

func (h *Host) sceneNew(hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	pos := len(p.scenes)
	if cur, _ := p.currentClipRef(); cur != nil {
		_, i := p.scene(cur.id)
		pos = i + 1
	}
	s := h.newScene()
	p.scenes = slices.Insert(p.scenes, pos, s)
	p.currentClip = s.clips[0].id
	return ""
}

func (h *Host) sceneDuplicate(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	s, i := p.scene(args.int(0))
	if s == nil {
		return ""
	}
	p.scenes = slices.Insert(p.scenes, i+1, h.copyScene(s))
	return ""
}

func (h *Host) sceneClose(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	_, i := p.scene(args.int(0))
	if i < 0 {
		return ""
	}
	p.scenes = slices.Delete(p.scenes, i, i+1)
	p.reselect()
	return ""
}

// Clips

func (h *Host) clipEnumID(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "none"
	}
	s, _ := p.scene(args.int(0))
	pos := args.int(1)
	if s == nil || pos < 0 || pos >= len(s.clips) {
		return "none"
	}
	return strconv.Itoa(s.clips[pos].id)
}

func (h *Host) clipCurrentID(hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return "0"
	}
	return strconv.Itoa(p.currentClip)
}

func (h *Host) clipSelect(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	if _, c, _ := p.clip(args.int(0)); c != nil {
		p.currentClip = c.id
	}
	return ""
}

func (h *Host) clipInfo(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	_, c, _ := p.clip(args.int(0))
	if c == nil {
		return ""
	}
	first, last := 0, 0
	for _, l := range c.layers {
		last = max(last, l.lastFrame)
	}
	return strings.Join([]string{
		strconv.Itoa(first),
		strconv.Itoa(last),
		quoted(c.name),
		boolString(c.visible),
		boolString(c.id == p.currentClip),
		strconv.Itoa(c.color),
		strconv.Itoa(c.markIn),
		strconv.Itoa(c.markOut),
		"0",
	}, " ")
}

func (h *Host) clipName(args hostArgs) string {
	c := h.clipByID(args.int(0))
	if c == nil {
		return ""
	}
	if args.has(1) {
		c.name = args.str(1)
		return ""
	}
	return quoted(c.name)
}

func (h *Host) clipNew(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	c := h.newClip(args.str(0))
	s, cur := p.currentClipRef()
	if s == nil {
		if len(p.scenes) == 0 {
			p.scenes = append(p.scenes, &hostScene{id: h.id()})
		}
		s = p.scenes[0]
		s.clips = append(s.clips, c)
	} else {
		_, _, i := p.clip(cur.id)
		s.clips = slices.Insert(s.clips, i+1, c)
	}
	p.currentClip = c.id
	return ""
}

func (h *Host) clipDuplicate(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	s, c, i := p.clip(args.int(0))
	if c == nil {
		return ""
	}
	s.clips = slices.Insert(s.clips, i+1, h.copyClip(c))
	return ""
}

func (h *Host) clipClose(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	s, c, i := p.clip(args.int(0))
	if c == nil {
		return ""
	}
	s.clips = slices.Delete(s.clips, i, i+1)
	p.reselect()
	return ""
}

func (h *Host) clipMove(args hostArgs) string {
	p := h.currentProject()
	if p == nil {
		return ""
	}
	src, c, i := p.clip(args.int(0))
	dst, _ := p.scene(args.int(1))
	if c == nil || dst == nil {
		return ""
	}
	src.clips = slices.Delete(src.clips, i, i+1)
	pos := min(max(args.int(2), 0), len(dst.clips))
	dst.clips = slices.Insert(dst.clips, pos, c)
	return ""
}

// Layers

func (h *Host) layerGetID(args hostArgs) string {
	c := h.currentClip()
	pos := args.int(0)
	if c == nil || pos < 0 || pos >= len(c.layers) {
		return "none"
	}
	return strconv.Itoa(c.layers[pos].id)
}

func (h *Host) layerCurrentID(hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "0"
	}
	return strconv.Itoa(c.currentLayer)
}

func (h *Host) layerSet(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return ""
	}
	if l, _ := c.layer(args.int(0)); l != nil {
		c.currentLayer = l.id
	}
	return ""
}

func (h *Host) layerInfo(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return ""
	}
	l, i := c.layer(args.int(0))
	if l == nil {
		return ""
	}
	return strings.Join([]string{
		boolString(l.visible),
		strconv.Itoa(i),
		strconv.Itoa(l.opacity),
		quoted(l.name),
		l.kind,
		strconv.Itoa(l.firstFrame),
		strconv.Itoa(l.lastFrame),
		boolString(l.id == c.currentLayer),
		"1",
		l.stencil,
	}, " ")
}

// insertLayer places l above the current layer and makes it current.
func (c *hostClip) insertLayer(l *hostLayer) {
	_, i := c.layer(c.currentLayer)
	c.layers = slices.Insert(c.layers, max(i, 0), l)
	c.currentLayer = l.id
}

func (h *Host) layerCreate(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "0"
	}
	l := h.newLayer(args.str(0))
	c.insertLayer(l)
	return strconv.Itoa(l.id)
}

func (h *Host) layerDuplicate(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return "0"
	}
	cur, _ := c.layer(c.currentLayer)
	if cur == nil {
		return "0"
	}
	l := h.copyLayer(cur)
	l.name = args.str(0)
	c.insertLayer(l)
	return strconv.Itoa(l.id)
}

func (h *Host) layerKill(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return ""
	}
	_, i := c.layer(args.int(0))
	if i < 0 {
		return ""
	}
	c.layers = slices.Delete(c.layers, i, i+1)
	if _, j := c.layer(c.currentLayer); j < 0 {
		c.currentLayer = 0
		if len(c.layers) > 0 {
			c.currentLayer = c.layers[min(i, len(c.layers)-1)].id
		}
	}
	return ""
}

func (h *Host) layerRename(args hostArgs) string {
	c := h.currentClip()
	if c == nil {
		return ""
	}
	if l, _ := c.layer(args.int(0)); l != nil {
		l.name = args.str(1)
	}
	return ""
}
