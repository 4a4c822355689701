// =============================================================================
// commands.go - Subcommands
// =============================================================================
//
//   tvp repl                    Interactive console (also the default)
//   tvp exec <command...>       Send one George command and print the reply
//   tvp tree                    Print the project → scene → clip → layer tree
//   tvp journal [--limit n]     List journaled commands, newest first
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/internal/journal"
	"github.com/johhnry/gotvpaint/tvpaint"
)

const defaultJournalLimit = 20

func newREPLCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive George console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPLCommand(cmd, opts)
		},
	}
}

// withSession resolves the config, connects and runs fn, serving metrics
// meanwhile when enabled.
func withSession(cmd *cobra.Command, opts *options, fn func(ctx context.Context, s *session) error) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	return withMetrics(cmd.Context(), cfg.MetricsAddr, s.registry, func(ctx context.Context) error {
		return fn(ctx, s)
	})
}

// =============================================================================
// exec
// =============================================================================

func newExecCmd(opts *options) *cobra.Command {
	var undo string

	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Send one George command and print the reply",
		Long: `Send one George command to TVPaint and print its raw reply.

The tv_ prefix is optional. Quote arguments for the shell and for George:

Examples:
  tvp exec tv_GetWidth
  tvp exec ClipName 102
  tvp exec --undo "add ink" LayerCreate '"ink"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := expandGeorge(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				send := func(ctx context.Context) error {
					reply, err := s.client.SendRaw(ctx, line)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), reply.String())
					return nil
				}
				if undo == "" {
					return send(ctx)
				}
				return george.Undoable(ctx, s.client, undo, send)
			})
		},
	}
	cmd.Flags().StringVar(&undo, "undo", "", "record the command as one undo step with this name")
	return cmd
}

// =============================================================================
// tree
// =============================================================================

// treePrinter writes the object tree with one indent level per depth.
type treePrinter struct {
	w     io.Writer
	title *color.Color
	id    *color.Color
}

func newTreePrinter(w io.Writer) *treePrinter {
	return &treePrinter{
		w:     w,
		title: color.New(color.Bold),
		id:    color.New(color.FgYellow),
	}
}

func (p *treePrinter) line(depth int, kind, id, name string) {
	fmt.Fprintf(p.w, "%s%s %s", strings.Repeat("  ", depth), p.title.Sprint(kind), p.id.Sprint(id))
	if name != "" {
		fmt.Fprintf(p.w, "  %s", name)
	}
	fmt.Fprintln(p.w)
}

func newTreeCmd(opts *options) *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print projects with their scenes, clips and layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				p := newTreePrinter(cmd.OutOrStdout())
				if current {
					project, err := tvpaint.CurrentProject(ctx, s.client)
					if err != nil {
						return err
					}
					return printProject(ctx, p, project)
				}
				for project, err := range tvpaint.Projects(ctx, s.client) {
					if err != nil {
						return err
					}
					if err := printProject(ctx, p, project); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&current, "current", false, "only print the current project")
	return cmd
}

func printProject(ctx context.Context, p *treePrinter, project *tvpaint.Project) error {
	projectPath, err := project.Path(ctx)
	if err != nil {
		return err
	}
	p.line(0, "project", project.ID(), projectPath)

	for scene, err := range project.Scenes(ctx) {
		if err != nil {
			return err
		}
		p.line(1, "scene", fmt.Sprint(scene.ID()), "")

		for clip, err := range scene.Clips(ctx) {
			if err != nil {
				return err
			}
			name, err := clip.Name(ctx)
			if err != nil {
				return err
			}
			p.line(2, "clip", fmt.Sprint(clip.ID()), name)

			for layer, err := range clip.Layers(ctx) {
				if err != nil {
					return err
				}
				name, err := layer.Name(ctx)
				if err != nil {
					return err
				}
				p.line(3, "layer", fmt.Sprint(layer.ID()), name)
			}
		}
	}
	return nil
}

// =============================================================================
// journal
// =============================================================================

func newJournalCmd(opts *options) *cobra.Command {
	limit := defaultJournalLimit

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List journaled commands, newest first",
		Long: `List the commands recorded with --journal, newest first.

Examples:
  tvp journal --journal ~/tvp.db
  tvp journal --limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.Journal == "" {
				return errors.New("no journal configured: pass --journal or set journal in the config file")
			}
			store, err := journal.Open(cfg.Journal)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", limit, "maximum number of entries to show (0 = all)")
	return cmd
}

func printJournal(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No commands recorded.")
		return
	}
	dim := color.New(color.Faint)
	failed := color.New(color.FgRed)
	for _, e := range entries {
		dim.Fprintf(w, "%s %8s  ", e.Time.Local().Format(time.DateTime), e.Duration.Round(time.Microsecond))
		fmt.Fprint(w, e.Command)
		if e.Err != "" {
			failed.Fprintf(w, "  ! %s\n", e.Err)
			continue
		}
		fmt.Fprintf(w, "  → %s\n", e.Reply)
	}
}
