package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envlens/internal/logging"
)

func start(t *testing.T, w *Watcher) <-chan Change {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Change, 8)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, changes) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return changes
}

func next(t *testing.T, changes <-chan Change) Change {
	t.Helper()

	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatcher_DocumentWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0o600))

	w := New(nil)
	w.Debounce = 10 * time.Millisecond
	require.NoError(t, w.AddDocument(path))
	changes := start(t, w)

	require.NoError(t, os.WriteFile(path, []byte("A=2\n"), 0o600))

	c := next(t, changes)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, Document, c.Kind)
}

func TestWatcher_SettingsReplacedByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	w := New(nil)
	w.Debounce = 10 * time.Millisecond
	require.NoError(t, w.AddSettings(path))
	changes := start(t, w)

	tmp := filepath.Join(dir, ".settings-123.yaml")
	require.NoError(t, os.WriteFile(tmp, []byte("enableAutoReveal: true\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	c := next(t, changes)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, Settings, c.Kind)
}

func TestWatcher_IgnoresUnwatchedNeighbours(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0o600))

	w := New(nil)
	w.Debounce = 10 * time.Millisecond
	require.NoError(t, w.AddDocument(path))
	changes := start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o600))

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.production")
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0o600))

	w := New(nil)
	w.Debounce = 100 * time.Millisecond
	require.NoError(t, w.AddDocument(path))
	changes := start(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("A=x\n"), 0o600))
	}

	next(t, changes)
	select {
	case c := <-changes:
		t.Fatalf("burst produced a second change %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

type mockWatcher struct {
	events chan fsnotify.Event
	errors chan error
	added  []string
}

func (m *mockWatcher) Add(name string) error         { m.added = append(m.added, name); return nil }
func (m *mockWatcher) Close() error                  { return nil }
func (m *mockWatcher) Events() <-chan fsnotify.Event { return m.events }
func (m *mockWatcher) Errors() <-chan error          { return m.errors }

func TestWatcher_ErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	mw := &mockWatcher{events: make(chan fsnotify.Event), errors: make(chan error, 1)}

	w := New(logging.NewWithWriter(&buf, false, true))
	w.newWatcher = func() (fileWatcher, error) { return mw, nil }
	require.NoError(t, w.AddDocument("/srv/app/.env"))
	require.NoError(t, w.AddSettings("/srv/app/settings.yaml"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, make(chan Change)) }()

	mw.errors <- errors.New("boom")
	// a second send only completes once the first error was consumed
	mw.errors <- errors.New("boom again")
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"/srv/app"}, mw.added)
	assert.Contains(t, buf.String(), "Watch error: boom")
}

func TestWatcher_NewWatcherFailure(t *testing.T) {
	t.Parallel()

	w := New(nil)
	w.newWatcher = func() (fileWatcher, error) { return nil, errors.New("too many open files") }

	err := w.Run(context.Background(), make(chan Change))
	assert.EqualError(t, err, "too many open files")
}
