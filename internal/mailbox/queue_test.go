package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type produced struct {
	producer int
	n        int
}

func TestConcurrentProducersDeliverExactlyOnceInOrder(t *testing.T) {
	const producers = 8
	const perProducer = 500

	q := New()
	var got []produced
	tag, err := Register(q, func(p produced) {
		got = append(got, p)
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				tag.Push(produced{producer: p, n: i})
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for len(got) < producers*perProducer {
		_, err := q.WaitAndDispatch(ctx, 100*time.Millisecond)
		require.NoError(t, err, "timed out with %d events delivered", len(got))
	}
	<-done
	// Nothing left behind once all producers returned.
	q.Dispatch()

	require.Len(t, got, producers*perProducer)
	next := make([]int, producers)
	for _, ev := range got {
		assert.Equal(t, next[ev.producer], ev.n, "producer %d out of order", ev.producer)
		next[ev.producer]++
	}
	for p := 0; p < producers; p++ {
		assert.Equal(t, perProducer, next[p])
	}

	stats := q.Stats()
	assert.Equal(t, uint64(producers*perProducer), stats.Pushed)
	assert.Equal(t, uint64(producers*perProducer), stats.Dispatched)
	assert.Zero(t, stats.Pending)
}

func TestSignalStaysRaisedUntilDrained(t *testing.T) {
	q := New()
	tag, err := Register(q, func(int) {})
	require.NoError(t, err)

	select {
	case <-q.Ready():
		t.Fatal("signal raised on empty queue")
	default:
	}

	tag.Push(1)
	tag.Push(2)

	// Receiving does not lower a manual-reset signal.
	for i := 0; i < 3; i++ {
		select {
		case <-q.Ready():
		default:
			t.Fatal("signal not raised while events are pending")
		}
	}

	assert.Equal(t, 2, q.Dispatch())
	select {
	case <-q.Ready():
		t.Fatal("signal still raised after drain")
	default:
	}
	assert.Equal(t, 0, q.Dispatch())
}

func TestMixedTypesKeepEnqueueOrder(t *testing.T) {
	q := New()
	var order []string
	ints, err := Register(q, func(n int) { order = append(order, "int") })
	require.NoError(t, err)
	strs, err := Register(q, func(s string) { order = append(order, s) })
	require.NoError(t, err)
	assert.NotEqual(t, ints.ID(), strs.ID())

	strs.Push("a")
	ints.Push(1)
	strs.Push("b")

	q.Dispatch()
	assert.Equal(t, []string{"a", "int", "b"}, order)
}

func TestPushFromHandlerLandsInNextBatch(t *testing.T) {
	q := New()
	var seen []int
	var tag Tag[int]
	var err error
	tag, err = Register(q, func(n int) {
		seen = append(seen, n)
		if n < 3 {
			tag.Push(n + 1)
		}
	})
	require.NoError(t, err)

	tag.Push(1)
	assert.Equal(t, 1, q.Dispatch())
	assert.Equal(t, 1, q.Dispatch())
	assert.Equal(t, 1, q.Dispatch())
	assert.Equal(t, 0, q.Dispatch())
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestWaitAndDispatchWakeReasons(t *testing.T) {
	input := make(chan struct{}, 1)
	q := New(WithInputSource(input))
	var got []int
	tag, err := Register(q, func(n int) { got = append(got, n) })
	require.NoError(t, err)

	reason, err := q.WaitAndDispatch(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, WokeTimeout, reason)

	input <- struct{}{}
	reason, err = q.WaitAndDispatch(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, WokeInput, reason)

	go func() {
		time.Sleep(20 * time.Millisecond)
		tag.Push(7)
	}()
	reason, err = q.WaitAndDispatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, WokeEvents, reason)
	assert.Equal(t, []int{7}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.WaitAndDispatch(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilInterfacePayload(t *testing.T) {
	q := New()
	var got []error
	calls := 0
	tag, err := Register(q, func(err error) {
		calls++
		got = append(got, err)
	})
	require.NoError(t, err)

	tag.Push(nil)
	tag.Push(context.Canceled)
	assert.NotPanics(t, func() { q.Dispatch() })
	assert.Equal(t, 2, calls)
	assert.Equal(t, []error{nil, context.Canceled}, got)

	// A payload of the wrong type is still a setup error
	q.Push(tag.ID(), "not an error")
	assert.Panics(t, func() { q.Dispatch() })
}

func TestMissingHandlerIsFatal(t *testing.T) {
	q := New()
	q.Push(TypeTag(1<<31), "orphan")
	assert.Panics(t, func() { q.Dispatch() })
}

func TestCloseDropsLaterPushes(t *testing.T) {
	q := New()
	var got []int
	tag, err := Register(q, func(n int) { got = append(got, n) })
	require.NoError(t, err)

	tag.Push(1)
	q.Close()
	tag.Push(2)

	assert.Equal(t, 1, q.Dispatch())
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, uint64(1), q.Stats().Dropped)

	_, err = Register(q, func(int) {})
	assert.ErrorIs(t, err, ErrSealed)
}

func TestTagsAreNeverReused(t *testing.T) {
	seen := map[TypeTag]bool{}
	for i := 0; i < 4; i++ {
		q := New()
		for j := 0; j < 4; j++ {
			tag, err := q.RegisterHandler("t", func(any) {})
			require.NoError(t, err)
			assert.False(t, seen[tag], "tag %d reused", tag)
			seen[tag] = true
		}
	}

	_, err := New().RegisterHandler("nil", nil)
	assert.Error(t, err)
}
