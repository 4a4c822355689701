package georgetest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/johhnry/gotvpaint/george"
)

// Bridge serves a george.Transport over a Unix socket with the line framing
// of the socket bridge: CMD:<line> in, OK:<reply> or ERR:<message> out.
type Bridge struct {
	listener   net.Listener
	socketPath string
	backend    george.Transport

	// Raw, when set, replaces the backend and returns the full reply line
	// including its prefix and newline.
	raw func(line string) string

	mu          sync.Mutex
	connections []net.Conn

	wg sync.WaitGroup
}

// StartBridge serves backend on a temporary socket until the test ends.
func StartBridge(t testing.TB, backend george.Transport) *Bridge {
	t.Helper()
	return startBridge(t, backend, nil)
}

// StartRawBridge serves a handler returning raw bridge lines, for tests of
// malformed or delayed replies.
func StartRawBridge(t testing.TB, handler func(line string) string) *Bridge {
	t.Helper()
	return startBridge(t, nil, handler)
}

func startBridge(t testing.TB, backend george.Transport, raw func(string) string) *Bridge {
	t.Helper()

	// Unix socket paths are limited to about 104 bytes on macOS, and
	// t.TempDir() can exceed that with long test names.
	tmpDir, err := os.MkdirTemp("/tmp", "tvp-test-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "s.sock")

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create bridge socket: %v", err)
	}

	b := &Bridge{
		listener:   listener,
		socketPath: socketPath,
		backend:    backend,
		raw:        raw,
	}
	b.wg.Add(1)
	go b.acceptLoop()
	t.Cleanup(b.Stop)
	return b
}

// Path returns the socket path.
func (b *Bridge) Path() string {
	return b.socketPath
}

func (b *Bridge) acceptLoop() {
	defer b.wg.Done()
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		b.mu.Lock()
		b.connections = append(b.connections, conn)
		b.mu.Unlock()

		b.wg.Add(1)
		go b.handleConnection(conn)
	}
}

func (b *Bridge) handleConnection(conn net.Conn) {
	defer b.wg.Done()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), george.MaxLineLength+len(george.CommandPrefix)+1)
	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), george.CommandPrefix)
		if b.raw != nil {
			if resp := b.raw(line); resp != "" {
				fmt.Fprint(conn, resp)
			}
			continue
		}
		fmt.Fprint(conn, b.serve(line))
	}
}

func (b *Bridge) serve(line string) string {
	reply, err := b.backend.Execute(context.Background(), line)
	if err != nil {
		var hostErr *george.HostError
		if errors.As(err, &hostErr) {
			return george.ErrorPrefix + hostErr.Message + "\n"
		}
		return george.ErrorPrefix + err.Error() + "\n"
	}
	return george.OKPrefix + reply + "\n"
}

// DropConnections closes every accepted connection, simulating the host
// going away while the listener stays up.
func (b *Bridge) DropConnections() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.connections {
		conn.Close()
	}
	b.connections = nil
}

// Stop closes the listener and every connection and waits for the
// connection goroutines.
func (b *Bridge) Stop() {
	b.listener.Close()
	b.DropConnections()
	b.wg.Wait()
	os.Remove(b.socketPath)
}
