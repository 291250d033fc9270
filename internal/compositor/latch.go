// Package compositor drives the per-tick render loop (spec.md C5): it
// advances the tick counter, lets every script redraw, composites
// their contributions into the shared global frame, and presents the
// result to the device at a bounded rate.
package compositor

import "sync"

// Latch is a single-round rendezvous: the compositor arms it for N
// expected acks with Reset, then Waits with a timeout; scripts and
// plugins call Ack as they finish their turn for that round. A party
// that acks after the round's Wait has already returned is simply
// ignored — that script missed the barrier for that frame (spec.md
// §4.5 "frame miss").
type Latch struct {
	mu     sync.Mutex
	target int
	acked  int
	done   chan struct{}
}

// NewLatch creates an unarmed Latch.
func NewLatch() *Latch {
	return &Latch{done: closedChan()}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// Reset arms the latch for a new round expecting `target` acks.
func (l *Latch) Reset(target int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = target
	l.acked = 0
	if target <= 0 {
		l.done = closedChan()
		return
	}
	l.done = make(chan struct{})
}

// Ack registers one party's completion of the current round.
// Implements script.Latch.
func (l *Latch) Ack() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acked >= l.target {
		return
	}
	l.acked++
	if l.acked >= l.target {
		close(l.done)
	}
}

// Wait blocks until every armed party has Acked or stop fires.
// Returns true if the round completed, false if stop fired first.
func (l *Latch) Wait(stop <-chan struct{}) bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
		return true
	case <-stop:
		return false
	}
}
