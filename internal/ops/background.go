package ops

import (
	"context"
	"time"

	"github.com/LFroesch/fcmd/internal/fileops"
	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/google/uuid"
)

type OpKind int

const (
	OpCopy OpKind = iota
	OpMove
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpMove:
		return "move"
	case OpDelete:
		return "delete"
	}
	return "copy"
}

// Progress is a snapshot of a running operation.
type Progress struct {
	ID         string
	Kind       OpKind
	Label      string
	Completed  int
	Total      int
	Current    string
	BytesDone  int64
	BytesTotal int64
	Cancelling bool
}

// Event is what the worker sends back. Exactly one Done event ends an
// operation.
type Event struct {
	Progress Progress
	Done     bool
	Entry    *UndoEntry
	Err      error
}

// BackgroundOperation is a batch running off the interactive loop.
type BackgroundOperation struct {
	ID      string
	Kind    OpKind
	Label   string
	Total   int
	Started time.Time

	progress Progress
	cancel   context.CancelFunc
	events   chan Event
}

func (e *Engine) start(b *batch) *BackgroundOperation {
	ctx, cancel := context.WithCancel(context.Background())
	op := &BackgroundOperation{
		ID:      uuid.NewString(),
		Kind:    b.kind,
		Label:   b.label,
		Total:   len(b.steps),
		Started: e.now(),
		cancel:  cancel,
		events:  make(chan Event, 32),
	}
	op.progress = Progress{ID: op.ID, Kind: op.Kind, Label: op.Label, Total: op.Total}
	e.active = op

	logger.WithField("op", op.ID).Infof("background %s started: %s", op.Kind, op.Label)

	go func() {
		defer cancel()
		base := op.progress
		for _, st := range b.steps {
			if n, err := fileops.Size(st.src); err == nil {
				base.BytesTotal += n
			}
		}
		send := func(p Progress) {
			p.ID, p.Kind, p.Label, p.BytesTotal = base.ID, base.Kind, base.Label, base.BytesTotal
			select {
			case op.events <- Event{Progress: p}:
			default:
			}
		}
		entry, done, err := e.runBatch(ctx, b, send)
		final := base
		final.Completed = done
		op.events <- Event{Progress: final, Done: true, Entry: entry, Err: err}
	}()
	return op
}

// Busy reports whether a background operation is in flight.
func (e *Engine) Busy() bool {
	return e.active != nil
}

// Active returns the latest progress snapshot of the running operation.
func (e *Engine) Active() (Progress, bool) {
	if e.active == nil {
		return Progress{}, false
	}
	return e.active.progress, true
}

// Cancel asks the running operation to stop before its next item.
func (e *Engine) Cancel() bool {
	if e.active == nil {
		return false
	}
	e.active.cancel()
	e.active.progress.Cancelling = true
	return true
}

// Poll drains pending worker events without blocking. When the operation
// has finished its undo entry is pushed and the finishing event returned.
func (e *Engine) Poll() (Event, bool) {
	op := e.active
	if op == nil {
		return Event{}, false
	}
	for {
		select {
		case ev := <-op.events:
			if !ev.Done {
				cancelling := op.progress.Cancelling
				op.progress = ev.Progress
				op.progress.Cancelling = cancelling
				continue
			}
			e.active = nil
			if ev.Entry != nil && len(ev.Entry.Actions) > 0 {
				e.push(ev.Entry)
			}
			logger.WithField("op", op.ID).Infof("background %s finished: %d/%d (err=%v)", op.Kind, ev.Progress.Completed, op.Total, ev.Err)
			return ev, true
		default:
			return Event{}, false
		}
	}
}

// Wait blocks until the running operation finishes. It exists for callers
// that are shutting down.
func (e *Engine) Wait(timeout time.Duration) (Event, bool) {
	deadline := time.After(timeout)
	for e.active != nil {
		if ev, ok := e.Poll(); ok {
			return ev, true
		}
		select {
		case <-deadline:
			return Event{}, false
		case <-time.After(10 * time.Millisecond):
		}
	}
	return Event{}, false
}
