package georgetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/johhnry/gotvpaint/george"
)

// Script is a george.Transport answering from canned replies.
//
// Replies are keyed by the exact command line. When several replies are
// queued for a line they are used in order and the last one repeats. A line
// with no reply fails with a *george.HostError so that unexpected commands
// show up in tests.
type Script struct {
	mu      sync.Mutex
	replies map[string][]string
	errs    map[string]error
	lines   []string
	closed  bool
}

var _ george.Transport = &Script{}

// NewScript returns an empty script.
func NewScript() *Script {
	return &Script{
		replies: make(map[string][]string),
		errs:    make(map[string]error),
	}
}

// On queues reply for line.
func (s *Script) On(line, reply string) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[line] = append(s.replies[line], reply)
	return s
}

// Fail makes line fail with err.
func (s *Script) Fail(line string, err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[line] = err
	return s
}

// Execute implements george.Transport.
func (s *Script) Execute(ctx context.Context, line string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", george.NewTransportError("abandoned", err)
	}
	if s.closed {
		return "", george.ErrNotConnected
	}
	s.lines = append(s.lines, line)

	if err, ok := s.errs[line]; ok {
		return "", err
	}
	queue, ok := s.replies[line]
	if !ok || len(queue) == 0 {
		return "", &george.HostError{Command: line, Message: fmt.Sprintf("unscripted command %q", line)}
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.replies[line] = queue[1:]
	}
	return reply, nil
}

// Lines returns every line received so far.
func (s *Script) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Reset forgets the received lines but keeps the replies.
func (s *Script) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Close implements george.Transport.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Script) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
