package tvpaint

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrRemoved is matched by every *RemovedError.
var ErrRemoved = errors.New("object has been removed")

// RemovedError is returned, without any host call, by operations on a
// facade whose object was removed through it.
type RemovedError struct {
	Kind string
	ID   string
}

func (e *RemovedError) Error() string {
	return fmt.Sprintf("%s %s has been removed", e.Kind, e.ID)
}

func (e *RemovedError) Is(target error) bool {
	return target == ErrRemoved
}

// removable is the lifecycle shared by facades: active until marked
// removed, then removed for good.
type removable struct {
	kind    string
	removed atomic.Bool
}

// IsRemoved reports whether the object was removed through this facade.
func (r *removable) IsRemoved() bool {
	return r.removed.Load()
}

func (r *removable) markRemoved() {
	r.removed.Store(true)
}

func (r *removable) check(id any) error {
	if r.removed.Load() {
		return &RemovedError{Kind: r.kind, ID: fmt.Sprint(id)}
	}
	return nil
}
