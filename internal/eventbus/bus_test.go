package eventbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
)

func TestNotifyDeliversInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int

	b.Register(func(events.Event) error { order = append(order, 1); return nil })
	b.Register(func(events.Event) error { order = append(order, 2); return nil })
	b.Register(func(events.Event) error { order = append(order, 3); return nil })

	assert.NoError(t, b.Notify(events.DaemonStartup()))
	assert.Equal(t, []int{1, 2, 3}, order)
}

// An observer returning an error is documented (spec.md §4.6, §9) as an
// intentional early-out: later observers are skipped for that event.
// This is the open question the spec flags as worth testing explicitly
// rather than assuming.
func TestObserverErrorAbortsLaterObserversForThatEvent(t *testing.T) {
	b := New()
	var calls []int
	boom := errors.New("boom")

	b.Register(func(events.Event) error { calls = append(calls, 1); return nil })
	b.Register(func(events.Event) error { calls = append(calls, 2); return boom })
	b.Register(func(events.Event) error { calls = append(calls, 3); return nil })

	err := b.Notify(events.DaemonStartup())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, calls, "observer 3 must not run once observer 2 errors")
}

func TestObserverErrorDoesNotAffectSubsequentNotify(t *testing.T) {
	b := New()
	var calls int
	b.Register(func(events.Event) error { calls++; return errors.New("fails every time") })

	assert.Error(t, b.Notify(events.DaemonStartup()))
	assert.Error(t, b.Notify(events.DaemonStartup()))
	assert.Equal(t, 2, calls)
}

func TestCancelFuncRemovesObserver(t *testing.T) {
	b := New()
	var called bool
	cancel := b.Register(func(events.Event) error { called = true; return nil })
	cancel()

	assert.NoError(t, b.Notify(events.DaemonStartup()))
	assert.False(t, called)
}

func TestNotifyStampsSequenceNumbers(t *testing.T) {
	b := New()
	var seqs []uint64
	b.Register(func(e events.Event) error { seqs = append(seqs, e.Seq); return nil })

	b.Notify(events.DaemonStartup())
	b.Notify(events.DaemonShutdown())

	assert.Equal(t, []uint64{1, 2}, seqs)
}
