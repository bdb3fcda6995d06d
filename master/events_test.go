package master

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventQueue_Order(t *testing.T) {
	require := require.New(t)

	q := newEventQueue()
	sink := &recordingSink{}

	q.push(func(s Sink) { s.OnConnected() })
	q.push(func(s Sink) { s.OnInterrogationAck() })
	q.push(func(s Sink) { s.OnInterrogationTerm() })

	events, ok := q.pop()
	require.True(ok)
	require.Len(events, 3)
	for _, ev := range events {
		ev(sink)
	}
	require.Equal([]string{"connected", "gi-ack", "gi-term"}, sink.Events())
}

func TestEventQueue_BlockingPop(t *testing.T) {
	require := require.New(t)

	q := newEventQueue()
	popped := make(chan int, 1)
	go func() {
		events, _ := q.pop()
		popped <- len(events)
	}()

	select {
	case <-popped:
		require.FailNow("pop returned from an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.push(func(Sink) {})

	select {
	case n := <-popped:
		require.Equal(1, n)
	case <-time.After(waitTimeout):
		require.FailNow("pop did not return")
	}
}

func TestEventQueue_Close(t *testing.T) {
	require := require.New(t)

	q := newEventQueue()
	q.push(func(Sink) {})
	q.close()
	q.push(func(Sink) {})

	events, ok := q.pop()
	require.True(ok)
	require.Len(events, 1)

	events, ok = q.pop()
	require.False(ok)
	require.Empty(events)
}
