package george

import (
	"context"
)

// UndoOpenStack opens an undo scope in the host.
func UndoOpenStack(ctx context.Context, c *Client) error {
	return Exec(ctx, c, NewCommand("tv_UndoOpenStack"))
}

// UndoCloseStack closes the open undo scope, naming the resulting step.
func UndoCloseStack(ctx context.Context, c *Client, name string) error {
	if name == "" {
		return Exec(ctx, c, NewCommand("tv_UndoCloseStack"))
	}
	return Exec(ctx, c, NewCommand("tv_UndoCloseStack", name))
}

// Undoable runs fn so that every command it sends is recorded by the host as
// one undo step named name.
//
// The close signal is sent on every exit path, including when fn fails or
// panics. When c is already inside a scope, fn runs without opening another
// one: the outermost scope wins. fn's error is returned unchanged; a failure
// to close the scope is only reported when fn itself succeeded.
func Undoable(ctx context.Context, c *Client, name string, fn func(ctx context.Context) error) error {
	_, err := UndoableValue(ctx, c, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// UndoableValue is Undoable for operations that return a value.
func UndoableValue[T any](ctx context.Context, c *Client, name string, fn func(ctx context.Context) (T, error)) (result T, err error) {
	if !c.enterUndo() {
		defer c.leaveUndo()
		return fn(ctx)
	}

	if openErr := UndoOpenStack(ctx, c); openErr != nil {
		c.leaveUndo()
		var zero T
		return zero, openErr
	}

	defer func() {
		c.leaveUndo()
		closeErr := UndoCloseStack(context.WithoutCancel(ctx), c, name)
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx)
}

// InUndoScope reports whether the client is inside an Undoable call.
func (c *Client) InUndoScope() bool {
	c.undoMu.Lock()
	defer c.undoMu.Unlock()
	return c.undoDepth > 0
}

// enterUndo increments the scope depth and reports whether this is the
// outermost scope.
func (c *Client) enterUndo() bool {
	c.undoMu.Lock()
	defer c.undoMu.Unlock()
	c.undoDepth++
	return c.undoDepth == 1
}

func (c *Client) leaveUndo() {
	c.undoMu.Lock()
	defer c.undoMu.Unlock()
	c.undoDepth--
}
