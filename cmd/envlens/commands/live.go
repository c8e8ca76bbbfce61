package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/controller"
	"github.com/systmms/envlens/internal/editor"
	"github.com/systmms/envlens/internal/metrics"
	"github.com/systmms/envlens/internal/watch"
)

// liveSession keeps a set of dotenv files open in a memory host and feeds
// file and settings changes to a reveal controller.
type liveSession struct {
	cfg     *config.Config
	host    *editor.MemoryHost
	ctrl    *controller.Controller
	watcher *watch.Watcher
	store   config.Store
	prefs   config.Preferences
	names   map[editor.ID]string
}

func newLiveSession(cfg *config.Config, files []string, rec *metrics.Recorder, onPass func(controller.Pass)) (*liveSession, error) {
	if len(files) == 0 {
		files = []string{defaultFile}
	}

	prefs, err := cfg.Preferences()
	if err != nil {
		return nil, err
	}

	s := &liveSession{
		cfg:     cfg,
		host:    editor.NewMemoryHost(),
		watcher: watch.New(cfg.Logger),
		store:   cfg.Store(),
		prefs:   prefs,
		names:   make(map[editor.ID]string),
	}

	for _, f := range files {
		text, err := readDotenvFile(f)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		id := editor.ID(abs)
		s.host.Open(id, abs, text)
		s.names[id] = f
		if err := s.watcher.AddDocument(abs); err != nil {
			return nil, err
		}
	}
	// the first file is the one shown first
	first, _ := filepath.Abs(files[0])
	s.host.Activate(editor.ID(first))

	if err := s.watcher.AddSettings(cfg.SettingsPath()); err != nil {
		return nil, err
	}

	s.ctrl = controller.New(controller.Options{
		Host:        s.host,
		Source:      newClient(cfg, prefs, rec),
		Preferences: s.store,
		Logger:      cfg.Logger,
		Metrics:     rec,
		OnPass:      onPass,
	})
	return s, nil
}

// run serves the controller and the file watcher until ctx is cancelled.
func (s *liveSession) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- s.ctrl.Run(ctx) }()

	changes := make(chan watch.Change)
	watchDone := make(chan error, 1)
	go func() { watchDone <- s.watcher.Run(ctx, changes) }()

	for {
		select {
		case <-ctx.Done():
			<-ctrlDone
			return nil
		case err := <-watchDone:
			cancel()
			<-ctrlDone
			return err
		case ch := <-changes:
			s.apply(ch)
		}
	}
}

func (s *liveSession) apply(ch watch.Change) {
	switch ch.Kind {
	case watch.Document:
		id := editor.ID(ch.Path)
		buf, ok := s.host.Buffer(id)
		if !ok {
			return
		}
		data, err := os.ReadFile(ch.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.cfg.Logger.Warn("%s was removed", s.names[id])
				s.host.Close(id)
				s.ctrl.Submit(editor.EditorClosed{Editor: id})
				return
			}
			s.cfg.Logger.Error("Cannot read %s: %v", s.names[id], err)
			return
		}
		if string(data) == buf.Text() {
			return
		}
		buf.SetText(string(data))
		s.ctrl.Submit(editor.DocumentChanged{Editor: id})

	case watch.Settings:
		prefs, err := s.store.Load()
		if err != nil {
			s.cfg.Logger.Warn("Ignoring settings change: %v", err)
			return
		}
		if s.cfg.DotenvxPath != "" {
			prefs.DotenvxPath = s.cfg.DotenvxPath
		}
		keys := s.prefs.Diff(prefs)
		s.prefs = prefs
		if len(keys) > 0 {
			s.cfg.Logger.Debug("Settings changed: %v", keys)
			s.ctrl.Submit(editor.ConfigChanged{Keys: keys})
		}
	}
}

// name returns the path an editor was opened with.
func (s *liveSession) name(id editor.ID) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return filepath.Base(string(id))
}
