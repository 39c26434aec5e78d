// Package loop serialises everything that mutates scene state. Producers
// post events from their own goroutines; a single consumer hands them to
// the Handler one at a time, in arrival order.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/leap_spacecraft/internal/hand"
	"github.com/relabs-tech/leap_spacecraft/internal/scene"
)

// Producer names.
const (
	ProducerInput  = "input"
	ProducerRender = "render"
	ProducerHost   = "host"
	ProducerLoader = "loader"
)

// Kind identifies the payload of an Event.
type Kind int

const (
	KindFrame Kind = iota + 1
	KindTick
	KindResize
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindTick:
		return "tick"
	case KindResize:
		return "resize"
	case KindModel:
		return "model"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one unit of work for the consumer. Only the fields that belong
// to Kind are set.
type Event struct {
	Producer string
	Kind     Kind

	Frame hand.Frame    // KindFrame
	Dt    time.Duration // KindTick

	Width, Height int // KindResize

	Mesh *scene.Mesh // KindModel
	Err  error       // KindModel
}

// Handler consumes events. It is only ever called from one goroutine.
type Handler interface {
	Handle(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) Handle(ev Event) { f(ev) }

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("loop: queue closed")

// Queue is a FIFO of events.
type Queue struct {
	events chan Event
	done   chan struct{}
}

// NewQueue returns a queue that buffers up to size events.
func NewQueue(size int) *Queue {
	return &Queue{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Post enqueues ev, waiting for room while ctx allows.
func (q *Queue) Post(ctx context.Context, ev Event) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.events <- ev:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost enqueues ev only if there is room. Render ticks use it so a slow
// consumer skips frames instead of building a backlog.
func (q *Queue) TryPost(ev Event) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.events <- ev:
		return true
	default:
		return false
	}
}

// Close stops accepting events. Events already queued can still be drained.
func (q *Queue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}

// Len is the number of events waiting.
func (q *Queue) Len() int {
	return len(q.events)
}

// Drain handles every event queued right now without blocking and returns
// how many it handled. Hosts with their own main loop (the desktop viewer)
// call it once per frame.
func (q *Queue) Drain(h Handler) int {
	n := 0
	for {
		select {
		case ev := <-q.events:
			h.Handle(ev)
			n++
		default:
			return n
		}
	}
}

// Run handles events until ctx is cancelled or the queue is closed and empty.
func (q *Queue) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-q.events:
			h.Handle(ev)
		case <-q.done:
			q.Drain(h)
			return nil
		}
	}
}

// RunInput forwards frames from src until ctx is cancelled or src fails.
func RunInput(ctx context.Context, q *Queue, src hand.Source) error {
	for {
		f, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input: %w", err)
		}
		if err := q.Post(ctx, Event{Producer: ProducerInput, Kind: KindFrame, Frame: f}); err != nil {
			return err
		}
	}
}

// RunRender posts a tick fps times per second, carrying the wall time
// elapsed since the previous tick.
func RunRender(ctx context.Context, q *Queue, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("render: invalid fps %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			dt := t.Sub(last)
			if !q.TryPost(Event{Producer: ProducerRender, Kind: KindTick, Dt: dt}) {
				dropped++
				if dropped%(fps*10) == 1 {
					log.Printf("render: consumer behind, %d ticks dropped", dropped)
				}
				// keep last so the next delivered tick carries the full gap
				continue
			}
			last = t
		}
	}
}

// Load runs the loader off the consumer goroutine and posts the result.
func Load(ctx context.Context, q *Queue, l scene.Loader, path string) error {
	mesh, err := l.LoadMesh(path)
	var le *scene.LoadError
	if err != nil && !errors.As(err, &le) {
		err = &scene.LoadError{Path: path, Err: err}
	}
	return q.Post(ctx, Event{Producer: ProducerLoader, Kind: KindModel, Mesh: mesh, Err: err})
}
