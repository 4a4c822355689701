package george

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// MapOption adjusts how a sentinel failure is reported.
type MapOption func(*mapping)

type mapping struct {
	kind    error
	message string
	codes   map[int]error
}

// WithKind selects the failure kind reported for any matched sentinel.
func WithKind(kind error) MapOption {
	return func(m *mapping) { m.kind = kind }
}

// WithMessage sets a human-readable message for the failure.
func WithMessage(msg string) MapOption {
	return func(m *mapping) { m.message = msg }
}

// WithCodeKind reports kind when the reply is the integer code n. It takes
// precedence over WithKind.
func WithCodeKind(n int, kind error) MapOption {
	return func(m *mapping) {
		if m.codes == nil {
			m.codes = make(map[int]error)
		}
		m.codes[n] = kind
	}
}

// MapError translates a sentinel failure into the kind and message chosen by
// the call site. Any other error, including nil, is returned unchanged.
func MapError(err error, opts ...MapOption) error {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}

	m := mapping{kind: cmdErr.Kind}
	for _, opt := range opts {
		opt(&m)
	}

	kind := m.kind
	if n, convErr := strconv.Atoi(strings.TrimSpace(cmdErr.Reply)); convErr == nil {
		if k, ok := m.codes[n]; ok {
			kind = k
		}
	}

	message := m.message
	if message == "" {
		message = cmdErr.Message
	}
	return &CommandError{
		Kind:    kind,
		Command: cmdErr.Command,
		Reply:   cmdErr.Reply,
		Message: message,
	}
}

// Strict sends cmd and maps a sentinel reply with MapError.
func Strict(ctx context.Context, c *Client, cmd Command, opts ...MapOption) (Reply, error) {
	reply, err := c.Send(ctx, cmd)
	if err != nil {
		return "", MapError(err, opts...)
	}
	return reply, nil
}

// Advisory sends cmd for operations whose effect happens even when the host
// reports a problem. A sentinel reply is returned together with a
// *PartialSuccessError carrying msg; callers decide whether it is fatal.
// Transport and other failures pass through unchanged.
func Advisory(ctx context.Context, c *Client, cmd Command, msg string) (Reply, error) {
	reply, err := c.Send(ctx, cmd)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return Reply(cmdErr.Reply), &PartialSuccessError{
			Command: cmdErr.Command,
			Reply:   cmdErr.Reply,
			Message: msg,
		}
	}
	return reply, err
}

// Exec sends cmd and discards the reply.
func Exec(ctx context.Context, c *Client, cmd Command, opts ...MapOption) error {
	_, err := Strict(ctx, c, cmd, opts...)
	return err
}
