// =============================================================================
// repl_test.go - Tests for the REPL Loop (repl.go)
// =============================================================================
//
// The REPL runs against georgetest.Host, a simulated TVPaint, served on a
// temporary unix socket by georgetest.Bridge. Piped stdin gets the piped
// console, so prompts appear in stdout.
//
// =============================================================================

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/george/georgetest"
)

// runREPLSession feeds input to "tvp repl" connected to a fresh host.
func runREPLSession(t *testing.T, input string) (*georgetest.Host, string, string) {
	t.Helper()
	host, bridge := startHost(t)
	out, errOut, err := runCLI(t, input, "--socket", bridge.Path(), "repl")
	if err != nil {
		t.Fatalf("repl: %v", err)
	}
	return host, out, errOut
}

// =============================================================================
// Loop Control
// =============================================================================

func TestREPLQuit(t *testing.T) {
	host, out, _ := runREPLSession(t, ".quit\ntv_GetWidth\n")
	if !strings.Contains(out, prompt) {
		t.Errorf("expected prompt in output:\n%s", out)
	}
	if n := host.Count("tv_GetWidth"); n != 0 {
		t.Errorf("command after .quit was sent %d times", n)
	}
}

func TestREPLExitAlias(t *testing.T) {
	host, _, _ := runREPLSession(t, ".EXIT\ntv_GetWidth\n")
	if n := host.Count("tv_GetWidth"); n != 0 {
		t.Errorf("command after .exit was sent %d times", n)
	}
}

func TestREPLEOFExits(t *testing.T) {
	_, out, errOut := runREPLSession(t, "")
	if strings.Count(out, prompt) != 1 {
		t.Errorf("expected exactly one prompt:\n%s", out)
	}
	if errOut != "" {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestREPLEmptyLinesSendNothing(t *testing.T) {
	host, _, _ := runREPLSession(t, "\n   \n\t\n")
	if lines := host.Lines(); len(lines) != 0 {
		t.Errorf("empty input sent %v", lines)
	}
}

func TestREPLStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newREPL(george.NewClient(georgetest.NewScript()), &bytes.Buffer{}, &bytes.Buffer{})
	in := &scriptedLines{lines: []string{"tv_GetWidth"}}
	if err := r.run(ctx, in); err != nil {
		t.Fatalf("run: %v", err)
	}
	if in.reads != 0 {
		t.Errorf("read %d lines after cancellation", in.reads)
	}
}

func TestREPLReadErrorEndsLoop(t *testing.T) {
	boom := errors.New("terminal gone")
	r := newREPL(george.NewClient(georgetest.NewScript()), &bytes.Buffer{}, &bytes.Buffer{})
	err := r.run(context.Background(), &scriptedLines{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("run() = %v, want %v", err, boom)
	}
}

// scriptedLines is a lineReader returning fixed lines, then err or io.EOF.
type scriptedLines struct {
	lines []string
	err   error
	reads int
}

func (s *scriptedLines) GetLine(string) (string, error) {
	s.reads++
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// =============================================================================
// George Commands
// =============================================================================

func TestREPLSendsGeorgeCommands(t *testing.T) {
	host, out, errOut := runREPLSession(t, "tv_GetWidth\nheight\nGetRatio\n.quit\n")

	want := []string{"tv_GetWidth", "tv_GetHeight", "tv_GetRatio"}
	if got := host.Lines(); !slices.Equal(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
	for _, reply := range []string{"1920", "1080", "1"} {
		if !strings.Contains(out, reply+"\n") {
			t.Errorf("reply %q missing from output:\n%s", reply, out)
		}
	}
	if errOut != "" {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestREPLPassesQuotedArguments(t *testing.T) {
	host, out, _ := runREPLSession(t, "LayerCreate \"ink and paint\"\n.quit\n")
	if got := host.Lines(); len(got) != 1 || got[0] != `tv_LayerCreate "ink and paint"` {
		t.Errorf("sent %q", got)
	}
	if !strings.Contains(out, "104") {
		t.Errorf("expected the new layer id in output:\n%s", out)
	}
}

func TestREPLHostErrorDoesNotEndLoop(t *testing.T) {
	host, out, errOut := runREPLSession(t, "tv_Bogus\ntv_GetWidth\n.quit\n")
	if !strings.Contains(errOut, "Error:") || !strings.Contains(errOut, "unknown command tv_Bogus") {
		t.Errorf("expected the bridge error on stderr, got %q", errOut)
	}
	if host.Count("tv_GetWidth") != 1 || !strings.Contains(out, "1920") {
		t.Errorf("loop should continue after an error:\n%s", out)
	}
}

func TestREPLUndoScope(t *testing.T) {
	host, _, errOut := runREPLSession(t, ".undo LayerCreate \"ink\"\n.quit\n")
	if errOut != "" {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	want := []string{"tv_UndoOpenStack", "tv_LayerCreate ink", "tv_UndoCloseStack tvp"}
	if got := host.Lines(); !slices.Equal(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
	if steps := host.UndoSteps(); !slices.Equal(steps, []string{undoName}) {
		t.Errorf("undo steps = %v", steps)
	}
}

func TestREPLUndoClosesScopeOnFailure(t *testing.T) {
	host, _, errOut := runREPLSession(t, ".undo tv_Bogus\n.quit\n")
	if !strings.Contains(errOut, "unknown command tv_Bogus") {
		t.Errorf("expected the failure on stderr, got %q", errOut)
	}
	if host.UndoDepth() != 0 {
		t.Errorf("undo scope left open at depth %d", host.UndoDepth())
	}
}

func TestREPLUndoWithoutCommand(t *testing.T) {
	host, _, errOut := runREPLSession(t, ".undo\n.quit\n")
	if !strings.Contains(errOut, "usage: .undo") {
		t.Errorf("expected usage on stderr, got %q", errOut)
	}
	if len(host.Lines()) != 0 {
		t.Errorf("sent %v", host.Lines())
	}
}

// =============================================================================
// Dot-Commands
// =============================================================================

func TestREPLListings(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []string
	}{
		"projects": {input: ".projects", want: []string{"* P0001  " + testProjectPath}},
		"scenes":   {input: ".scenes", want: []string{"* 0  scene 103"}},
		"clips":    {input: ".clips", want: []string{"* 102  Untitled"}},
		"layers":   {input: ".layers", want: []string{"* 101  Layer 1"}},
		"current": {input: ".current", want: []string{
			"project  P0001", "scene    103", "clip     102", "layer    101",
		}},
		"case insensitive": {input: ".LAYERS", want: []string{"* 101  Layer 1"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, out, errOut := runREPLSession(t, tc.input+"\n.quit\n")
			if errOut != "" {
				t.Fatalf("unexpected stderr: %q", errOut)
			}
			for _, want := range tc.want {
				if !strings.Contains(out, want+"\n") {
					t.Errorf("missing %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestREPLListingMarksOnlyCurrent(t *testing.T) {
	_, out, _ := runREPLSession(t, "LayerCreate \"ink\"\nLayerSet 101\n.layers\n.quit\n")
	if !strings.Contains(out, "* 101  Layer 1\n") {
		t.Errorf("layer 101 should be current:\n%s", out)
	}
	if !strings.Contains(out, "  104  ink\n") {
		t.Errorf("layer 104 should be listed unmarked:\n%s", out)
	}
}

func TestREPLHelp(t *testing.T) {
	_, out, errOut := runREPLSession(t, ".help\n.help undo\n.help nothing\n.quit\n")
	if !strings.Contains(out, "Dot-commands:") || !strings.Contains(out, ".undo <command>") {
		t.Errorf("missing help text:\n%s", out)
	}
	if !strings.Contains(errOut, "no help for 'nothing'") {
		t.Errorf("expected unknown topic error, got %q", errOut)
	}
}

func TestREPLUnknownDotCommand(t *testing.T) {
	_, _, errOut := runREPLSession(t, ".monitor\n.quit\n")
	if !strings.Contains(errOut, "unknown command '.monitor'") {
		t.Errorf("got %q", errOut)
	}
}
