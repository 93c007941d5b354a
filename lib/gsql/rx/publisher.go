// Package rx is the minimal single-value publisher contract used to bridge
// reactive SQL sources into blocking callers. It is deliberately tiny: the
// core only ever awaits exactly one value (the result of a transaction).
package rx

import (
	"context"
	"errors"
)

// ErrNoValue is returned by Block when the publisher completes without
// emitting a value.
var ErrNoValue = errors.New("publisher completed without a value")

// Publisher emits at most one value or one error. Subscribe must be safe to
// call once; the returned channels are closed when the publisher completes.
type Publisher[T any] interface {
	Subscribe(ctx context.Context) (<-chan T, <-chan error)
}

// Func adapts a plain function into a Publisher. The function runs on its
// own goroutine when subscribed.
type Func[T any] func(ctx context.Context) (T, error)

func (T Func[V]) Subscribe(ctx context.Context) (<-chan V, <-chan error) {
	values := make(chan V, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(values)
		defer close(errs)
		v, err := T(ctx)
		if err != nil {
			errs <- err
			return
		}
		values <- v
	}()
	return values, errs
}

// Just is a publisher that immediately emits v.
func Just[T any](v T) Publisher[T] {
	return Func[T](func(context.Context) (T, error) {
		return v, nil
	})
}

// Error is a publisher that immediately fails with err.
func Error[T any](err error) Publisher[T] {
	return Func[T](func(context.Context) (T, error) {
		return *new(T), err
	})
}

// Block awaits the publisher's single value on the calling goroutine.
func Block[T any](ctx context.Context, p Publisher[T]) (T, error) {
	values, errs := p.Subscribe(ctx)

	select {
	case v, ok := <-values:
		if !ok {
			// a value may still have raced onto the error channel
			if err, ok := <-errs; ok && err != nil {
				return *new(T), err
			}
			return *new(T), ErrNoValue
		}
		return v, nil
	case err, ok := <-errs:
		if !ok {
			if v, ok := <-values; ok {
				return v, nil
			}
			return *new(T), ErrNoValue
		}
		return *new(T), err
	case <-ctx.Done():
		return *new(T), ctx.Err()
	}
}
