// Package eventbus is the process-wide pub/sub registry described in
// spec.md C6: observers run on the publisher's goroutine, in
// registration order, and an observer returning an error aborts
// delivery to the observers registered after it for that one event.
package eventbus

import (
	"sync"
	"time"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
)

// Observer is a non-blocking, thread-safe callback invoked for every
// published Event.
type Observer func(evt events.Event) error

// CancelFunc unregisters the observer it was returned from.
type CancelFunc func()

// Bus is a registry of Observers. The zero value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	observers []*entry
	nextID    uint64
	seq       uint64
}

type entry struct {
	id       uint64
	observer Observer
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Register appends an observer and returns a function that removes it.
func (b *Bus) Register(o Observer) CancelFunc {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.observers = append(b.observers, &entry{id: id, observer: o})
	b.mu.Unlock()

	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.observers {
		if e.id == id {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Notify stamps evt with the next sequence number and delivers it to
// every registered observer, in registration order, on the calling
// goroutine. If an observer returns an error, delivery stops for this
// event and Notify returns that error — this early-out is intentional
// (spec.md §9, §4.6) and is exercised explicitly in bus_test.go rather
// than assumed.
func (b *Bus) Notify(evt events.Event) error {
	b.mu.Lock()
	b.seq++
	evt.Seq = b.seq
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	observers := make([]*entry, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, e := range observers {
		if err := e.observer(evt); err != nil {
			return err
		}
	}
	return nil
}
