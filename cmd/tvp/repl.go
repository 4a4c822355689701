// =============================================================================
// repl.go - REPL Loop
// =============================================================================
//
// Reads lines, runs dot-commands locally through the object model and sends
// everything else to TVPaint as George commands. Replies are printed as they
// come back; failures are printed in red and never end the loop. Only .quit,
// end of input or a cancelled context stop it.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/tvpaint"
)

const (
	prompt = "george> "

	// undoName is the undo step name used by .undo.
	undoName = "tvp"
)

// lineReader is the input side of the REPL.
type lineReader interface {
	GetLine(prompt string) (string, error)
}

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// repl holds the state of one interactive session.
type repl struct {
	client *george.Client
	out    io.Writer
	errOut io.Writer

	reply  *color.Color
	marker *color.Color
	failed *color.Color
}

func newREPL(client *george.Client, out, errOut io.Writer) *repl {
	return &repl{
		client: client,
		out:    out,
		errOut: errOut,
		reply:  color.New(color.FgCyan),
		marker: color.New(color.FgGreen, color.Bold),
		failed: color.New(color.FgRed),
	}
}

// run reads until end of input, .quit or ctx is done.
func (r *repl) run(ctx context.Context, in lineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := in.GetLine(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}

		err = r.handle(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			r.failed.Fprintf(r.errOut, "Error: %v\n", err)
		}
	}
}

// handle executes one input line.
func (r *repl) handle(ctx context.Context, line string) error {
	in, err := parseInput(line)
	if err != nil {
		return err
	}
	switch in.kind {
	case inputEmpty:
		return nil
	case inputGeorge:
		return r.send(ctx, in.line)
	}

	switch in.name {
	case "quit", "exit":
		return errQuit
	case "help":
		return printHelp(r.out, in.arg)
	case "projects":
		return r.listProjects(ctx)
	case "scenes":
		return r.listScenes(ctx)
	case "clips":
		return r.listClips(ctx)
	case "layers":
		return r.listLayers(ctx)
	case "current":
		return r.showCurrent(ctx)
	case "undo":
		if in.arg == "" {
			return fmt.Errorf("usage: .undo <command>")
		}
		expanded, err := expandGeorge(in.arg)
		if err != nil {
			return err
		}
		return george.Undoable(ctx, r.client, undoName, func(ctx context.Context) error {
			return r.send(ctx, expanded)
		})
	default:
		return fmt.Errorf("unknown command '.%s'. Type .help for available commands", in.name)
	}
}

func (r *repl) send(ctx context.Context, line string) error {
	reply, err := r.client.SendRaw(ctx, line)
	if err != nil {
		return err
	}
	if reply != "" {
		r.reply.Fprintln(r.out, reply.String())
	}
	return nil
}

// row prints one listing line, marked when current.
func (r *repl) row(current bool, format string, args ...any) {
	mark := " "
	if current {
		mark = r.marker.Sprint("*")
	}
	fmt.Fprintf(r.out, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (r *repl) listProjects(ctx context.Context) error {
	current, err := tvpaint.CurrentProject(ctx, r.client)
	if err != nil && !errors.Is(err, tvpaint.ErrNotFound) && !errors.Is(err, george.ErrNoObject) {
		return err
	}
	for p, err := range tvpaint.Projects(ctx, r.client) {
		if err != nil {
			return err
		}
		projectPath, err := p.Path(ctx)
		if err != nil {
			return err
		}
		r.row(current != nil && p.Equal(current), "%s  %s", p.ID(), projectPath)
	}
	return nil
}

func (r *repl) listScenes(ctx context.Context) error {
	p, err := tvpaint.CurrentProject(ctx, r.client)
	if err != nil {
		return err
	}
	current, err := p.CurrentScene(ctx)
	if err != nil {
		return err
	}
	pos := 0
	for s, err := range p.Scenes(ctx) {
		if err != nil {
			return err
		}
		r.row(s.Equal(current), "%d  scene %d", pos, s.ID())
		pos++
	}
	return nil
}

func (r *repl) listClips(ctx context.Context) error {
	p, err := tvpaint.CurrentProject(ctx, r.client)
	if err != nil {
		return err
	}
	current, err := p.CurrentClip(ctx)
	if err != nil {
		return err
	}
	for c, err := range current.Scene().Clips(ctx) {
		if err != nil {
			return err
		}
		name, err := c.Name(ctx)
		if err != nil {
			return err
		}
		r.row(c.Equal(current), "%d  %s", c.ID(), name)
	}
	return nil
}

func (r *repl) listLayers(ctx context.Context) error {
	p, err := tvpaint.CurrentProject(ctx, r.client)
	if err != nil {
		return err
	}
	clip, err := p.CurrentClip(ctx)
	if err != nil {
		return err
	}
	current, err := clip.CurrentLayer(ctx)
	if err != nil {
		return err
	}
	for l, err := range clip.Layers(ctx) {
		if err != nil {
			return err
		}
		name, err := l.Name(ctx)
		if err != nil {
			return err
		}
		r.row(l.Equal(current), "%d  %s", l.ID(), name)
	}
	return nil
}

func (r *repl) showCurrent(ctx context.Context) error {
	p, err := tvpaint.CurrentProject(ctx, r.client)
	if err != nil {
		return err
	}
	clip, err := p.CurrentClip(ctx)
	if err != nil {
		return err
	}
	layer, err := clip.CurrentLayer(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "project  %s\nscene    %d\nclip     %d\nlayer    %d\n",
		p.ID(), clip.Scene().ID(), clip.ID(), layer.ID())
	return nil
}

// =============================================================================
// Command
// =============================================================================

// runREPLCommand connects and runs the REPL on cmd's input and output.
func runREPLCommand(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	s, err := openSession(ctx, cfg, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	in := openConsole(cmd.InOrStdin(), out, errOut, historyPath(cfg.History))
	defer in.Close()

	if in.Interactive() {
		fmt.Fprint(out, welcomeBanner())
		fmt.Fprintf(out, "Connected to %s\n\n", strings.TrimSpace(s.endpoint))
	}

	return withMetrics(ctx, cfg.MetricsAddr, s.registry, func(ctx context.Context) error {
		return newREPL(s.client, out, errOut).run(ctx, in)
	})
}
