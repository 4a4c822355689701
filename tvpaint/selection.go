package tvpaint

import "context"

// Selectable is implemented by facades that can be the host's current
// object at their level.
type Selectable interface {
	// IsCurrent asks the host whether the object is current.
	IsCurrent(ctx context.Context) (bool, error)

	// MakeCurrent makes the object current. It sends no selection command
	// when the object already is current.
	MakeCurrent(ctx context.Context) error
}

// WithCurrent makes s current and then runs fn. fn does not run when the
// selection fails.
func WithCurrent(ctx context.Context, s Selectable, fn func(ctx context.Context) error) error {
	if err := s.MakeCurrent(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// WithCurrentValue is WithCurrent for operations returning a value.
func WithCurrentValue[T any](ctx context.Context, s Selectable, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := s.MakeCurrent(ctx); err != nil {
		var zero T
		return zero, err
	}
	return fn(ctx)
}

// ensureCurrent runs sel unless isCurrent reports the target is current.
func ensureCurrent(ctx context.Context, isCurrent func(context.Context) (bool, error), sel func(context.Context) error) error {
	ok, err := isCurrent(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return sel(ctx)
}
