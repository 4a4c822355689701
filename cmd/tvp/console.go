// =============================================================================
// console.go - REPL Input
// =============================================================================
//
// A terminal on stdin gets readline: history in ~/.tvp_history, Ctrl-R search
// and tab completion of dot-commands, help topics and short forms. Piped
// input, or a shell inside Emacs, is read line by line and the prompt is
// echoed to the output so transcripts keep their shape.
//
// =============================================================================

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".tvp_history"
	historySize     = 500

	// maxInputLine is above george.MaxLineLength so that an overlong command
	// reaches expandGeorge and fails with ErrLineTooLong instead of ending
	// the session.
	maxInputLine = 64 * 1024
)

// console is where the REPL reads its lines from.
type console interface {
	lineReader
	Interactive() bool
	Close() error
}

// openConsole returns a terminal console when in is a terminal outside
// Emacs, and a piped console otherwise. A readline failure is reported on
// errOut and falls back to the piped console.
func openConsole(in io.Reader, out, errOut io.Writer, history string) console {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("INSIDE_EMACS") != "" {
		return newPipedConsole(in, out)
	}
	c, err := newTerminalConsole(f, out, history)
	if err != nil {
		fmt.Fprintf(errOut, "Warning: line editing unavailable (%v)\n", err)
		return newPipedConsole(in, out)
	}
	return c
}

// =============================================================================
// Terminal
// =============================================================================

type terminalConsole struct {
	rl *readline.Instance
}

func newTerminalConsole(f *os.File, out io.Writer, history string) (*terminalConsole, error) {
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            history,
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
		HistorySearchFold:      true,
		AutoComplete:           readline.NewPrefixCompleter(completions()...),
		Stdin:                  f,
		Stdout:                 out,
	})
	if err != nil {
		return nil, err
	}
	return &terminalConsole{rl: rl}, nil
}

// GetLine reads one edited line. Ctrl-C and Ctrl-D both end the session.
func (c *terminalConsole) GetLine(prompt string) (string, error) {
	c.rl.SetPrompt(prompt)
	line, err := c.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if entry, ok := historyEntry(line); ok {
		_ = c.rl.SaveToHistory(entry)
	}
	return line, nil
}

func (c *terminalConsole) Interactive() bool { return true }

func (c *terminalConsole) Close() error {
	if c.rl == nil {
		return nil
	}
	err := c.rl.Close()
	c.rl = nil
	return err
}

// historyEntry returns the text to remember for line. Blank lines and the
// commands that end a session are not kept.
func historyEntry(line string) (string, bool) {
	entry := strings.TrimSpace(line)
	switch strings.ToLower(entry) {
	case "", ".quit", ".exit":
		return "", false
	}
	return entry, true
}

// completions lists what tab completes: every dot-command, help topics after
// .help, and the short forms.
func completions() []*readline.PrefixCompleter {
	topics := slices.Concat(
		slices.Sorted(maps.Keys(dotHelp)),
		slices.Sorted(maps.Keys(georgeHelp)),
	)
	topicItems := make([]*readline.PrefixCompleter, 0, len(topics))
	for _, topic := range topics {
		topicItems = append(topicItems, readline.PcItem(topic))
	}

	var items []*readline.PrefixCompleter
	for _, name := range slices.Sorted(maps.Keys(dotHelp)) {
		if name == "help" {
			items = append(items, readline.PcItem(".help", topicItems...))
			continue
		}
		items = append(items, readline.PcItem("."+name))
	}
	for _, word := range slices.Sorted(maps.Keys(shortForms)) {
		items = append(items, readline.PcItem(word))
	}
	return items
}

// =============================================================================
// Piped
// =============================================================================

type pipedConsole struct {
	lines *bufio.Scanner
	echo  io.Writer
}

func newPipedConsole(in io.Reader, echo io.Writer) *pipedConsole {
	lines := bufio.NewScanner(in)
	lines.Buffer(make([]byte, 0, 4096), maxInputLine)
	return &pipedConsole{lines: lines, echo: echo}
}

// GetLine writes the prompt and returns the next input line, or io.EOF at
// the end of input.
func (c *pipedConsole) GetLine(prompt string) (string, error) {
	fmt.Fprint(c.echo, prompt)
	if c.lines.Scan() {
		return c.lines.Text(), nil
	}
	if err := c.lines.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *pipedConsole) Interactive() bool { return false }

func (c *pipedConsole) Close() error { return nil }

// historyPath returns configured, or ~/.tvp_history when it is empty.
func historyPath(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}
