package george

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Transport carries one command line to the host and returns its raw reply.
// Implementations block until the reply arrives or ctx is done.
type Transport interface {
	Execute(ctx context.Context, line string) (string, error)
	Close() error
}

// Handler executes a command and returns the raw reply.
type Handler func(ctx context.Context, cmd Command) (string, error)

// Middleware wraps a Handler with cross-cutting behavior (logging, metrics,
// journaling). Middlewares run outermost first, in the order given.
type Middleware func(next Handler) Handler

// Chain composes middlewares around a final handler.
func Chain(final Handler, middlewares ...Middleware) Handler {
	h := final
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMiddleware appends middlewares around the transport call.
func WithMiddleware(m ...Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, m...) }
}

// Client is the command channel to one TVPaint instance.
//
// Send is serialized: the host processes a single command stream, so at most
// one command is in flight per Client.
type Client struct {
	mu        sync.Mutex
	transport Transport
	handler   Handler

	logger      *slog.Logger
	middlewares []Middleware

	undoMu    sync.Mutex
	undoDepth int
}

// NewClient creates a client over an established transport.
func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.handler = Chain(c.execute, c.middlewares...)
	return c
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Send sends cmd and waits for its reply.
//
// A reply matching one of the command's declared sentinels is returned as a
// *CommandError of kind ErrCommandFailed, with no value. Transport failures
// are returned as is and are never retried.
func (c *Client) Send(ctx context.Context, cmd Command) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.handler(ctx, cmd)
	if err != nil {
		return "", err
	}

	if s, ok := cmd.match(raw); ok {
		c.logger.Debug("sentinel reply", "command", cmd.Name, "sentinel", s.String())
		return "", &CommandError{Kind: ErrCommandFailed, Command: cmd.Format(), Reply: raw}
	}
	return Reply(raw), nil
}

// SendRaw parses a raw George line and sends it without sentinels.
func (c *Client) SendRaw(ctx context.Context, line string) (Reply, error) {
	cmd, err := ParseCommandLine(line)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, cmd)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) execute(ctx context.Context, cmd Command) (string, error) {
	line := cmd.Format()
	if len(line) > MaxLineLength {
		return "", ErrLineTooLong
	}
	return c.transport.Execute(ctx, line)
}
