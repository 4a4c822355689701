package george

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// DisconnectHandler is called when a socket bridge connection is lost.
type DisconnectHandler func(err error)

// SocketTransport talks to a line-oriented George bridge over a Unix domain
// or TCP socket.
//
//	Request:  CMD:<command line>\n
//	Reply:    OK:<reply>\n
//	Failure:  ERR:<message>\n
//
// A reader goroutine delivers each reply line to the single pending request.
type SocketTransport struct {
	mu sync.Mutex

	conn        net.Conn
	address     string
	isConnected bool

	reader *bufio.Reader

	// Reply channel of the request in flight, nil between requests
	pendingResponse chan lineResult

	disconnectHandler DisconnectHandler

	cancelReader context.CancelFunc
	readerDone   chan struct{}
}

type lineResult struct {
	line string
	err  error
}

// NewSocketTransport creates an unconnected socket transport.
func NewSocketTransport() *SocketTransport {
	return &SocketTransport{}
}

// DialSocket connects to a bridge. network is "unix" or "tcp".
func DialSocket(ctx context.Context, network, address string) (*SocketTransport, error) {
	t := NewSocketTransport()
	if err := t.Connect(ctx, network, address); err != nil {
		return nil, err
	}
	return t, nil
}

// DiscoverAndDial connects to the most recently started bridge socket.
func DiscoverAndDial(ctx context.Context) (*SocketTransport, error) {
	path := DiscoverSocket()
	if path == "" {
		return nil, ErrSocketNotFound
	}
	return DialSocket(ctx, "unix", path)
}

// SetDisconnectHandler sets the callback for disconnection events.
func (t *SocketTransport) SetDisconnectHandler(handler DisconnectHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnectHandler = handler
}

// IsConnected returns true if the transport is currently connected.
func (t *SocketTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isConnected
}

// Address returns the address of the connected bridge, or "".
func (t *SocketTransport) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.address
}

// Connect dials the bridge and starts the reader goroutine.
func (t *SocketTransport) Connect(ctx context.Context, network, address string) error {
	t.mu.Lock()
	if t.isConnected {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	t.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, ConnectionTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(connectCtx, network, address)
	if err != nil {
		return NewTransportError("failed to connect", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn = conn
	t.address = address
	t.isConnected = true
	t.reader = bufio.NewReader(conn)

	readerCtx, cancelReader := context.WithCancel(context.Background())
	t.cancelReader = cancelReader
	t.readerDone = make(chan struct{})

	go t.readerLoop(readerCtx)
	return nil
}

// Close disconnects from the bridge. It is safe to call more than once.
func (t *SocketTransport) Close() error {
	t.mu.Lock()
	t.isConnected = false
	if t.cancelReader != nil {
		t.cancelReader()
	}
	done := t.readerDone
	t.mu.Unlock()

	// Wait for reader to finish (outside lock to avoid deadlock)
	if done != nil {
		<-done
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	var err error
	if t.conn != nil {
		err = t.conn.Close()
		t.conn = nil
	}
	t.address = ""
	t.reader = nil
	t.cancelReader = nil
	t.readerDone = nil
	t.pendingResponse = nil
	return err
}

// Execute writes one command line and waits for its reply line.
func (t *SocketTransport) Execute(ctx context.Context, line string) (string, error) {
	t.mu.Lock()
	if !t.isConnected {
		t.mu.Unlock()
		return "", ErrNotConnected
	}
	conn := t.conn
	pending := make(chan lineResult, 1)
	t.pendingResponse = pending
	t.mu.Unlock()
	defer t.clearPending(pending)

	if _, err := fmt.Fprintf(conn, "%s%s\n", CommandPrefix, line); err != nil {
		return "", NewTransportError("failed to send command", err)
	}

	select {
	case result := <-pending:
		if result.err != nil {
			return "", result.err
		}
		return decodeBridgeLine(line, result.line)
	case <-ctx.Done():
		// The reply may still arrive and would be taken for the next
		// command's, so the connection cannot be reused.
		_ = t.Close()
		return "", NewTransportError("abandoned waiting for reply", ctx.Err())
	}
}

func (t *SocketTransport) clearPending(pending chan lineResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pendingResponse == pending {
		t.pendingResponse = nil
	}
}

// decodeBridgeLine strips the bridge framing from one reply line.
func decodeBridgeLine(command, line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case strings.HasPrefix(line, OKPrefix):
		return line[len(OKPrefix):], nil
	case strings.HasPrefix(line, ErrorPrefix):
		return "", &HostError{Command: command, Message: line[len(ErrorPrefix):]}
	default:
		return "", NewTransportError(fmt.Sprintf("unexpected bridge line %q", line), nil)
	}
}

// readerLoop continuously reads from the socket and hands lines to the
// pending request.
func (t *SocketTransport) readerLoop(ctx context.Context) {
	t.mu.Lock()
	done := t.readerDone
	t.mu.Unlock()
	defer close(done)

	var partial strings.Builder
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Set read deadline to allow checking for cancellation
		t.mu.Lock()
		if t.conn == nil {
			t.mu.Unlock()
			return
		}
		_ = t.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		reader := t.reader
		t.mu.Unlock()

		line, err := reader.ReadString('\n')
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				partial.WriteString(line)
				continue
			}
			t.handleDisconnect(err)
			return
		}
		if partial.Len() > 0 {
			partial.WriteString(line)
			line = partial.String()
			partial.Reset()
		}

		// Each request takes exactly one line; anything else is dropped.
		t.mu.Lock()
		pending := t.pendingResponse
		t.pendingResponse = nil
		t.mu.Unlock()
		if pending != nil {
			pending <- lineResult{line: line}
		}
	}
}

// handleDisconnect handles an unexpected disconnection.
func (t *SocketTransport) handleDisconnect(err error) {
	t.mu.Lock()
	if !t.isConnected {
		t.mu.Unlock()
		return
	}
	t.isConnected = false
	handler := t.disconnectHandler
	pending := t.pendingResponse
	t.pendingResponse = nil
	t.mu.Unlock()

	if pending != nil {
		select {
		case pending <- lineResult{err: NewTransportError("disconnected", err)}:
		default:
		}
	}

	if handler != nil {
		handler(err)
	}
}
