package george

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/jsonrpc2"
)

// WebSocketTransport sends George commands as JSON-RPC 2.0 calls to the
// TVPaint RPC plugin. Every command is one "execute_george" call whose single
// positional parameter is the command line and whose result is the reply.
type WebSocketTransport struct {
	url    string
	mu     sync.Mutex
	conn   *jsonrpc2.Connection
	stream *wsStream
}

var _ Transport = &WebSocketTransport{}

// DialWebSocket connects to the RPC plugin at url (DefaultURL when empty).
// Only the handshake is bounded by ctx and ConnectionTimeout; the connection
// outlives both.
func DialWebSocket(ctx context.Context, url string) (*WebSocketTransport, error) {
	if url == "" {
		url = DefaultURL
	}
	t := &WebSocketTransport{url: url}
	d := &wsDialer{url: url}

	conn, err := jsonrpc2.Dial(context.WithoutCancel(ctx), dialBounded{ctx: ctx, dialer: d}, &jsonrpc2.ConnectionOptions{
		Handler: t,
		Framer:  wsFramer{},
	})
	if err != nil {
		return nil, NewTransportError("failed to connect to "+url, err)
	}
	t.conn = conn
	t.stream = d.stream
	return t, nil
}

// URL returns the endpoint the transport is connected to.
func (t *WebSocketTransport) URL() string {
	return t.url
}

// Handle rejects server-initiated requests; the plugin only answers calls.
func (t *WebSocketTransport) Handle(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	return nil, jsonrpc2.ErrNotHandled
}

// Execute runs one command line. A wait is abandoned when ctx is done or the
// connection is lost.
func (t *WebSocketTransport) Execute(ctx context.Context, line string) (string, error) {
	t.mu.Lock()
	conn, stream := t.conn, t.stream
	t.mu.Unlock()
	if conn == nil {
		return "", ErrNotConnected
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(stream.lost, cancel)
	defer stop()

	var result string
	call := conn.Call(waitCtx, ExecuteMethod, []string{line})
	if err := call.Await(waitCtx, &result); err != nil {
		var rpcErr *rpcError
		switch {
		case errors.As(err, &rpcErr):
			return "", &HostError{Command: line, Message: rpcErr.Message}
		case stream.lost.Err() != nil:
			return "", NewTransportError("disconnected", context.Cause(stream.lost))
		}
		return "", NewTransportError(ExecuteMethod+" call failed", err)
	}
	return result, nil
}

// Close closes the RPC connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.stream = nil
	return err
}

// rpcError is the error object of a JSON-RPC response.
type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

// dialBounded applies ctx and ConnectionTimeout to the handshake only.
type dialBounded struct {
	ctx    context.Context
	dialer jsonrpc2.Dialer
}

func (d dialBounded) Dial(context.Context) (io.ReadWriteCloser, error) {
	ctx, cancel := context.WithTimeout(d.ctx, ConnectionTimeout)
	defer cancel()
	return d.dialer.Dial(ctx)
}

type wsDialer struct {
	url    string
	header http.Header
	stream *wsStream
}

var _ jsonrpc2.Dialer = &wsDialer{}

func (d *wsDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, d.header)
	if err != nil {
		return nil, err
	}
	d.stream = newWSStream(ws)
	return d.stream, nil
}

// wsStream adapts a WebSocket connection to io.ReadWriteCloser. The framer
// uses its message-level methods; Read and Write treat each WebSocket
// message as a chunk of a byte stream.
type wsStream struct {
	ws *websocket.Conn

	// lost is cancelled with the read error once the connection fails.
	lost context.Context
	lose context.CancelCauseFunc

	readMu  sync.Mutex
	current io.Reader

	writeMu sync.Mutex
}

var _ io.ReadWriteCloser = &wsStream{}

func newWSStream(ws *websocket.Conn) *wsStream {
	lost, lose := context.WithCancelCause(context.Background())
	return &wsStream{ws: ws, lost: lost, lose: lose}
}

func (s *wsStream) readMessage() ([]byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	for {
		kind, data, err := s.ws.ReadMessage()
		if err != nil {
			s.lose(err)
			return nil, err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (s *wsStream) writeMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

func (s *wsStream) Read(p []byte) (int, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	for {
		if s.current == nil {
			_, r, err := s.ws.NextReader()
			if err != nil {
				return 0, err
			}
			s.current = r
		}
		n, err := s.current.Read(p)
		if errors.Is(err, io.EOF) {
			s.current = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.writeMessage(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	s.lose(net.ErrClosed)
	return s.ws.Close()
}

// wsFramer maps one JSON-RPC message to one WebSocket text message.
type wsFramer struct{}

func (wsFramer) Reader(r io.Reader) jsonrpc2.Reader {
	if s, ok := r.(*wsStream); ok {
		return &wsReader{stream: s}
	}
	return jsonrpc2.RawFramer().Reader(r)
}

func (wsFramer) Writer(w io.Writer) jsonrpc2.Writer {
	if s, ok := w.(*wsStream); ok {
		return &wsWriter{stream: s}
	}
	return jsonrpc2.RawFramer().Writer(w)
}

type wsReader struct {
	stream *wsStream
}

func (r *wsReader) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	data, err := r.stream.readMessage()
	if err != nil {
		return nil, 0, err
	}
	msg, err := jsonrpc2.DecodeMessage(data)
	if err != nil {
		return nil, int64(len(data)), err
	}
	if resp, ok := msg.(*jsonrpc2.Response); ok && resp.Error != nil {
		// The decoded error type is unexported; keep code and message.
		var wire struct {
			Error *rpcError `json:"error"`
		}
		if json.Unmarshal(data, &wire) == nil && wire.Error != nil {
			resp.Error = wire.Error
		} else {
			resp.Error = &rpcError{Message: resp.Error.Error()}
		}
	}
	return msg, int64(len(data)), nil
}

type wsWriter struct {
	stream *wsStream
}

func (w *wsWriter) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return 0, err
	}
	if err := w.stream.writeMessage(data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}
