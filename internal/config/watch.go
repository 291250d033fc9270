package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
)

// Publisher is the subset of eventbus.Bus the watcher needs, so tests
// can substitute a recording fake.
type Publisher interface {
	Notify(evt events.Event) error
}

// Watcher republishes filesystem changes under a profiles directory
// onto the event bus (SPEC_FULL.md A2), mirroring the way the teacher
// watches its settings file and reacts to on-disk edits.
type Watcher struct {
	fsw  *fsnotify.Watcher
	bus  Publisher
	log  *slog.Logger
	done chan struct{}
}

// NewWatcher starts watching dir and returns a Watcher whose Run
// goroutine publishes events onto bus until Close is called.
func NewWatcher(dir string, bus Publisher, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{fsw: fsw, bus: bus, log: log, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("profile directory watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	var kind events.FSChangeKind
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = events.FSCreated
	case ev.Op&fsnotify.Write != 0:
		kind = events.FSModified
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = events.FSRemoved
	default:
		return
	}
	if err := w.bus.Notify(events.NewFilesystemEvent(ev.Name, kind)); err != nil {
		w.log.Warn("profile change observer rejected event", "path", ev.Name, "error", err)
	}
}

// Close stops the underlying fsnotify watcher and waits for the run
// goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
