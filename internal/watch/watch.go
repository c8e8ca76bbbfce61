// Package watch reports changes to open dotenv files and the settings file.
//
// Parent directories are watched rather than the files themselves so that
// editors and the settings store, which save by writing a temp file and
// renaming it over the original, keep producing events.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/systmms/envlens/internal/logging"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 75 * time.Millisecond

// Kind tells a document change from a settings change.
type Kind int

const (
	Document Kind = iota
	Settings
)

// Change is one settled modification of a watched file.
type Change struct {
	Path string
	Kind Kind
}

type fileWatcher interface {
	Add(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsWatcher struct {
	*fsnotify.Watcher
}

func (w fsWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w fsWatcher) Errors() <-chan error          { return w.Watcher.Errors }

func newFSWatcher() (fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return fsWatcher{w}, nil
}

// Watcher watches a set of files.
type Watcher struct {
	Debounce time.Duration

	logger     *logging.Logger
	files      map[string]Kind
	newWatcher func() (fileWatcher, error)
}

// New creates a watcher with nothing to watch yet.
func New(logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		Debounce:   DefaultDebounce,
		logger:     logger,
		files:      make(map[string]Kind),
		newWatcher: newFSWatcher,
	}
}

// AddDocument watches a dotenv file.
func (w *Watcher) AddDocument(path string) error {
	return w.add(path, Document)
}

// AddSettings watches the settings file. It does not need to exist yet.
func (w *Watcher) AddSettings(path string) error {
	return w.add(path, Settings)
}

func (w *Watcher) add(path string, kind Kind) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.files[abs] = kind
	return nil
}

// Run delivers changes until ctx is cancelled. Files added after Run starts
// are not watched.
func (w *Watcher) Run(ctx context.Context, changes chan<- Change) error {
	fw, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	dirs := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("Cannot watch %s: %v", dir, err)
		}
	}

	fired := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if _, watched := w.files[name]; !watched {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("Watch event %s on %s", ev.Op, filepath.Base(name))
			if t, ok := pending[name]; ok {
				t.Reset(w.Debounce)
				continue
			}
			pending[name] = time.AfterFunc(w.Debounce, func() {
				select {
				case fired <- name:
				case <-ctx.Done():
				}
			})
		case name := <-fired:
			delete(pending, name)
			select {
			case changes <- Change{Path: name, Kind: w.files[name]}:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-fw.Errors():
			if !ok {
				return nil
			}
			w.logger.Error("Watch error: %v", err)
		}
	}
}
