package tvpaint

import (
	"context"
	"errors"
	"iter"

	"github.com/johhnry/gotvpaint/george"
)

// Fetch returns the id of the child at position. It reports
// george.ErrNoObject past the last child.
type Fetch[ID any] func(ctx context.Context, position int) (ID, error)

// Positions returns the ids at positions 0, 1, 2... in order, fetching each
// only when the consumer asks for it. The sequence ends normally at the first
// george.ErrNoObject; any other error is yielded once and ends it.
//
// Ranging over the sequence again starts over at position 0. It is not a
// snapshot: if children are added or removed while it is consumed, ids may
// be skipped or repeated.
func Positions[ID any](ctx context.Context, fetch Fetch[ID]) iter.Seq2[ID, error] {
	return positions(ctx, nil, george.ErrNoObject, fetch)
}

// positions is Positions running prepare before every fetch and ending at
// the first error of kind end. A prepare error is yielded and ends the
// sequence, whatever its kind.
func positions[ID any](ctx context.Context, prepare func(context.Context) error, end error, fetch Fetch[ID]) iter.Seq2[ID, error] {
	return func(yield func(ID, error) bool) {
		var zero ID
		for pos := 0; ; pos++ {
			if prepare != nil {
				if err := prepare(ctx); err != nil {
					yield(zero, err)
					return
				}
			}
			id, err := fetch(ctx, pos)
			if errors.Is(err, end) {
				return
			}
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Collect drains seq, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// within enumerates children of parent. Position queries are relative to
// the current object, so parent is made current again before each step: the
// consumer may select something else between two ids.
func within[ID any](ctx context.Context, parent Selectable, fetch Fetch[ID]) iter.Seq2[ID, error] {
	return positions(ctx, parent.MakeCurrent, george.ErrNoObject, fetch)
}

// soundTracks enumerates track indices 0, 1, 2... while info succeeds. The
// host answers ErrInvalidTarget past the last track, which ends the
// sequence; ErrNoObject means the owner is gone and is yielded. prepare may
// be nil.
func soundTracks(ctx context.Context, prepare func(context.Context) error, info func(ctx context.Context, track int) error) iter.Seq2[int, error] {
	return positions(ctx, prepare, george.ErrInvalidTarget, func(ctx context.Context, track int) (int, error) {
		return track, info(ctx, track)
	})
}

// mapSeq wraps every id of seq in a facade.
func mapSeq[ID, T any](seq iter.Seq2[ID, error], wrap func(ID) T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for id, err := range seq {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(wrap(id), nil) {
				return
			}
		}
	}
}

// failed is a sequence yielding only err.
func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// indexOf returns the position of want in seq.
func indexOf[ID comparable](seq iter.Seq2[ID, error], want ID) (int, error) {
	pos := 0
	for id, err := range seq {
		if err != nil {
			return -1, err
		}
		if id == want {
			return pos, nil
		}
		pos++
	}
	return -1, george.ErrNoObject
}
