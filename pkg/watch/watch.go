// Package watch reports changes to a fixed set of source files. It
// watches the files' directories rather than the files themselves, so
// editors that save by renaming a temporary file are still seen.
package watch

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is a set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	if op == 0 {
		return "none"
	}
	var s string
	for _, p := range []struct {
		bit  Op
		name string
	}{{OpCreate, "create"}, {OpWrite, "write"}, {OpRemove, "remove"}, {OpRename, "rename"}} {
		if op&p.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += p.name
		}
	}
	return s
}

// Event is one coalesced change to a watched file. Path is absolute.
type Event struct {
	Path string
	Op   Op
}

// Watcher delivers Events for the files it was created with.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration

	evC  chan Event
	erC  chan error
	done chan struct{}
}

// New starts watching paths. Changes to one file that arrive within
// debounce of each other are merged into a single Event; zero delivers
// every change as it comes.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{
		w:        w,
		files:    make(map[string]bool),
		debounce: debounce,
		evC:      make(chan Event, 64),
		erC:      make(chan error, 1),
		done:     make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	go fw.loop()
	return fw, nil
}

func translate(op fsnotify.Op) Op {
	var out Op
	if op&fsnotify.Create != 0 {
		out |= OpCreate
	}
	if op&fsnotify.Write != 0 {
		out |= OpWrite
	}
	if op&fsnotify.Remove != 0 {
		out |= OpRemove
	}
	if op&fsnotify.Rename != 0 {
		out |= OpRename
	}
	return out
}

func (fw *Watcher) loop() {
	defer close(fw.evC)

	pending := make(map[string]Op)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() bool {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			select {
			case fw.evC <- Event{Path: p, Op: pending[p]}:
			case <-fw.done:
				return false
			}
			delete(pending, p)
		}
		return true
	}

	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				flush()
				return
			}
			path := filepath.Clean(ev.Name)
			op := translate(ev.Op)
			if !fw.files[path] || op == 0 {
				continue
			}
			pending[path] |= op
			if fw.debounce <= 0 {
				if !flush() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if !flush() {
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default: // drop if the last error was never read
			}
		case <-fw.done:
			return
		}
	}
}

// Events is closed once the watcher stops.
func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Close stops the watcher. It must be called exactly once.
func (fw *Watcher) Close() error {
	close(fw.done)
	return fw.w.Close()
}
