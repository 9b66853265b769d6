// Package dropzone adapts external file-arrival notifications into load
// requests. A terminal has no native drag-and-drop delivery, so the bridge
// watches an inbox directory: dropping a file into it plays the role of
// dropping onto the window. Events can also be injected directly, which is
// how pickers and tests drive it.
package dropzone

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind discriminates bridge events.
type EventKind int

const (
	// DragEnter asks the UI to enable the drop affordance.
	DragEnter EventKind = iota
	// DragCancelled asks the UI to disable it without a drop.
	DragCancelled
	// FileDropped delivers the dropped file's path; the affordance is
	// disabled afterwards.
	FileDropped
)

// Event is one discrete drop-zone notification. Path is set only for
// FileDropped.
type Event struct {
	Kind EventKind
	Path string
}

// Bridge turns inbox-directory activity into Events.
type Bridge struct {
	watcher *fsnotify.Watcher
	events  chan Event
	log     *slog.Logger
	done    chan struct{}
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// New starts watching dir for arriving files. Pass an empty dir to create
// an inject-only bridge with no filesystem watcher.
func New(dir string, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		events: make(chan Event, 16),
		log:    slog.New(slog.DiscardHandler),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	if dir == "" {
		return b, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	b.watcher = watcher
	go b.watchLoop()
	return b, nil
}

// Events returns the bridge's event stream.
func (b *Bridge) Events() <-chan Event { return b.events }

// Inject delivers paths as if they were dropped onto the window. Only the
// first path is consumed; the rest are ignored.
func (b *Bridge) Inject(paths ...string) {
	if len(paths) == 0 {
		b.send(Event{Kind: DragCancelled})
		return
	}
	b.send(Event{Kind: FileDropped, Path: paths[0]})
}

// InjectDragEnter signals that a drag has entered the window.
func (b *Bridge) InjectDragEnter() { b.send(Event{Kind: DragEnter}) }

// InjectDragCancelled signals that a drag left without dropping.
func (b *Bridge) InjectDragCancelled() { b.send(Event{Kind: DragCancelled}) }

// Close stops the watcher and the event stream.
func (b *Bridge) Close() error {
	close(b.done)
	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}

func (b *Bridge) watchLoop() {
	// One debounce timer for the whole inbox: a Create immediately
	// followed by Writes announces the file once, after it settles. The
	// pending path sticks to the first file of a burst, so two distinct
	// files arriving back to back announce the first one.
	var debounce *time.Timer
	var pending string

	for {
		select {
		case <-b.done:
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			// Stop returning false means the timer already fired and the
			// previous burst is over.
			if debounce != nil && !debounce.Stop() {
				pending = ""
			}
			if pending == "" {
				pending = event.Name
			}
			name := pending
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				b.log.Debug("file arrived in drop inbox", "path", name)
				b.send(Event{Kind: FileDropped, Path: name})
			})

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.Error("drop inbox watcher error", "error", err)
		}
	}
}

// send never blocks; a full consumer drops the event.
func (b *Bridge) send(ev Event) {
	select {
	case b.events <- ev:
	default:
	}
}

// WaitEvent receives the next event or fails when ctx expires.
func WaitEvent(ctx context.Context, b *Bridge) (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	case <-ctx.Done():
		return Event{}, false
	}
}
