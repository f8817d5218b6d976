package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Write(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, nil)

	for i := 0; i < 5; i++ {
		d.Dispatch(Event{SalonID: 1, Action: "reservation_created"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Len(t, rec.events, 5)
}

func TestDispatcher_WriteErrorDoesNotStopWorker(t *testing.T) {
	rec := &recorder{err: errors.New("db down")}
	d := NewDispatcher(rec, nil)

	d.Dispatch(Event{Action: "a"})
	d.Dispatch(Event{Action: "b"})
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, rec.events, 2)
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() { d.Dispatch(Event{Action: "x"}) })
}
