package mailbox

import (
	"fmt"
	"sync/atomic"
)

var lastTag atomic.Uint32

func allocateTag() TypeTag {
	return TypeTag(lastTag.Add(1))
}

// Tag is a typed handle for pushing payloads of type T onto a queue.
type Tag[T any] struct {
	q   *Queue
	tag TypeTag
}

// Register allocates a tag on q whose handler receives payloads of type T.
// A nil payload reaches fn as the zero T; any other payload that is not a T
// panics like a missing handler.
func Register[T any](q *Queue, fn func(T)) (Tag[T], error) {
	var zero T
	name := fmt.Sprintf("%T", zero)
	tag, err := q.RegisterHandler(name, func(payload any) {
		if payload == nil {
			fn(zero)
			return
		}
		fn(payload.(T))
	})
	if err != nil {
		return Tag[T]{}, err
	}
	return Tag[T]{q: q, tag: tag}, nil
}

// Push enqueues payload under this tag.
func (t Tag[T]) Push(payload T) {
	t.q.Push(t.tag, payload)
}

// ID returns the underlying type tag.
func (t Tag[T]) ID() TypeTag {
	return t.tag
}
