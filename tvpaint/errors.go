package tvpaint

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when no child matches.
var ErrNotFound = errors.New("not found")

func notFound(kind, key string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, fmt.Sprintf(key, args...))
}
