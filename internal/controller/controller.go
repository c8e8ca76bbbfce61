// Package controller decides when dotenv files are decorated with their
// decrypted values.
//
// A Controller owns every piece of reveal state and mutates it from a single
// goroutine (Run). Hosts feed it editor events with Submit. Fetching the
// decrypted mapping is the only slow step; it runs in its own goroutine and
// reports back through the same queue, tagged with a per-editor generation so
// that results of superseded passes are dropped.
package controller

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/editor"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/logging"
	"github.com/systmms/envlens/internal/metrics"
	"github.com/systmms/envlens/internal/overlay"
	"github.com/systmms/envlens/internal/reveal"
)

// ErrStopped is returned by calls made after Run has returned.
var ErrStopped = errors.New("controller stopped")

// State is the reveal state of one editor.
type State int

const (
	// Disabled means reveal is off; the editor carries no overlays.
	Disabled State = iota
	// Idle means reveal is on and overlays match the last completed pass.
	Idle
	// Refreshing means a pass is in flight.
	Refreshing
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// LensTitle is the label of the toggle action for the given reveal state.
func LensTitle(enabled bool) string {
	if enabled {
		return "Hide Secrets"
	}
	return "Reveal Secrets"
}

// Pass describes a decoration pass that has settled.
type Pass struct {
	Editor  editor.ID
	Outcome string
	Patches int
	Err     error
}

// Options wires a Controller to its collaborators.
type Options struct {
	Host        editor.Host
	Source      dotenvx.Source
	Preferences config.Store
	Renderer    *overlay.Renderer
	Logger      *logging.Logger
	Metrics     *metrics.Recorder

	// OnPass, when set, is called on the controller goroutine after every
	// pass settles. It must not block.
	OnPass func(Pass)
}

type fetched struct {
	editor  editor.ID
	gen     uint64
	source  string
	mapping reveal.Mapping
	err     error
}

type message struct {
	event editor.Event
	done  *fetched
	query func()
	sync  chan struct{}
}

// Controller is the reveal state machine.
type Controller struct {
	host     editor.Host
	source   dotenvx.Source
	prefs    config.Store
	renderer *overlay.Renderer
	logger   *logging.Logger
	metrics  *metrics.Recorder
	onPass   func(Pass)

	queue   chan message
	stopped chan struct{}

	// Owned by the Run goroutine.
	ctx      context.Context
	enabled  bool
	gens     map[editor.ID]uint64
	cancels  map[editor.ID]context.CancelFunc
	states   map[editor.ID]State
	inflight int
	waiters  []chan struct{}
}

// New creates a controller. Call Run to start it.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Renderer == nil {
		opts.Renderer = overlay.NewRenderer()
	}
	return &Controller{
		host:     opts.Host,
		source:   opts.Source,
		prefs:    opts.Preferences,
		renderer: opts.Renderer,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		onPass:   opts.OnPass,
		queue:    make(chan message, 256),
		stopped:  make(chan struct{}),
		gens:     make(map[editor.ID]uint64),
		cancels:  make(map[editor.ID]context.CancelFunc),
		states:   make(map[editor.ID]State),
	}
}

// Run processes events until ctx is cancelled. It reads the reveal
// preference, decorates every open editor, then serves the queue. Run must
// be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)

	c.ctx = ctx
	c.enabled = c.loadEnabled()
	c.metrics.SetRevealEnabled(c.enabled)
	c.redecorateAll()

	for {
		c.settle()
		select {
		case <-ctx.Done():
			for id := range c.cancels {
				c.supersede(id)
			}
			return ctx.Err()
		case m := <-c.queue:
			c.handle(m)
		}
	}
}

// Submit queues an event. It is safe to call from any goroutine and is a
// no-op once Run has returned.
func (c *Controller) Submit(ev editor.Event) {
	c.post(message{event: ev})
}

// Redecorate asks for a fresh pass on one editor. Calling it repeatedly
// without an intervening change converges on the same overlays.
func (c *Controller) Redecorate(id editor.ID) {
	c.Submit(editor.RedecorateRequested{Editor: id})
}

// Toggle flips reveal and persists the new value.
func (c *Controller) Toggle() {
	c.Submit(editor.ToggleRequested{})
}

// SetEnabled turns reveal on or off and persists the value.
func (c *Controller) SetEnabled(enabled bool) {
	c.Submit(editor.ToggleRequested{Enable: &enabled})
}

// Sync blocks until every queued event and in-flight fetch has settled.
func (c *Controller) Sync(ctx context.Context) error {
	ch := make(chan struct{})
	if !c.post(message{sync: ch}) {
		return ErrStopped
	}
	select {
	case <-ch:
		return nil
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enabled reports whether reveal is on.
func (c *Controller) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := c.do(ctx, func() { enabled = c.enabled })
	return enabled, err
}

// State reports the reveal state of an editor.
func (c *Controller) State(ctx context.Context, id editor.ID) (State, error) {
	var state State
	err := c.do(ctx, func() { state = c.stateOf(id) })
	return state, err
}

// Overlays returns the decorations currently applied to an editor.
func (c *Controller) Overlays(ctx context.Context, id editor.ID) ([]editor.Decoration, error) {
	var decs []editor.Decoration
	err := c.do(ctx, func() { decs = c.renderer.Overlays(id) })
	return decs, err
}

func (c *Controller) do(ctx context.Context, fn func()) error {
	ch := make(chan struct{})
	if !c.post(message{query: func() { fn(); close(ch) }}) {
		return ErrStopped
	}
	select {
	case <-ch:
		return nil
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) post(m message) bool {
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.queue <- m:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Controller) handle(m message) {
	switch {
	case m.done != nil:
		c.complete(m.done)
	case m.query != nil:
		m.query()
	case m.sync != nil:
		c.waiters = append(c.waiters, m.sync)
	case m.event != nil:
		c.dispatch(m.event)
	}
}

func (c *Controller) dispatch(ev editor.Event) {
	switch ev := ev.(type) {
	case editor.EditorActivated:
		c.redecorate(ev.Editor)
	case editor.DocumentOpened:
		c.redecorate(ev.Editor)
	case editor.DocumentChanged:
		c.redecorate(ev.Editor)
	case editor.RedecorateRequested:
		c.redecorate(ev.Editor)
	case editor.EditorClosed:
		c.forget(ev.Editor)
	case editor.ToggleRequested:
		target := !c.enabled
		if ev.Enable != nil {
			target = *ev.Enable
		}
		c.persist(target)
		c.setEnabled(target)
	case editor.ConfigChanged:
		if !ev.Affects(config.KeyEnableAutoReveal) {
			return
		}
		if enabled := c.loadEnabled(); enabled != c.enabled {
			c.setEnabled(enabled)
		}
	}
}

// settle releases Sync waiters once nothing is queued or in flight.
func (c *Controller) settle() {
	if len(c.waiters) == 0 || c.inflight > 0 || len(c.queue) > 0 {
		return
	}
	for _, w := range c.waiters {
		close(w)
	}
	c.waiters = nil
}

func (c *Controller) setEnabled(enabled bool) {
	c.enabled = enabled
	c.metrics.SetRevealEnabled(enabled)
	if enabled {
		c.logger.Debug("Reveal enabled")
	} else {
		c.logger.Debug("Reveal disabled")
	}
	c.redecorateAll()
}

func (c *Controller) redecorateAll() {
	for _, ed := range c.host.Editors() {
		c.redecorate(ed.ID())
	}
}

func (c *Controller) redecorate(id editor.ID) {
	ed, ok := c.host.Editor(id)
	if !ok {
		return
	}
	if !dotenvx.IsSupportedFile(ed.Path()) {
		c.metrics.RecordPass(metrics.OutcomeSkipped, 0)
		return
	}

	c.supersede(id)

	if !c.enabled {
		c.renderer.Clear(ed)
		c.states[id] = Disabled
		c.report(Pass{Editor: id, Outcome: metrics.OutcomeCleared})
		return
	}

	gen := c.gens[id]
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancels[id] = cancel
	c.states[id] = Refreshing
	c.inflight++

	path := ed.Path()
	text := ed.Text()
	c.logger.Debug("Refreshing %s (pass %d)", filepath.Base(path), gen)

	go func() {
		mapping, err := c.source.GetDecrypted(ctx, path)
		c.post(message{done: &fetched{
			editor:  id,
			gen:     gen,
			source:  text,
			mapping: mapping,
			err:     err,
		}})
	}()
}

// supersede invalidates any pass in flight for id.
func (c *Controller) supersede(id editor.ID) {
	c.gens[id]++
	if cancel, ok := c.cancels[id]; ok {
		cancel()
		delete(c.cancels, id)
	}
}

func (c *Controller) complete(f *fetched) {
	c.inflight--

	if f.gen != c.gens[f.editor] {
		c.logger.Debug("Discarding pass %d for %s: %v", f.gen, f.editor, dserrors.ErrStaleRequest)
		c.metrics.RecordPass(metrics.OutcomeStale, 0)
		return
	}
	if cancel, ok := c.cancels[f.editor]; ok {
		cancel()
		delete(c.cancels, f.editor)
	}

	ed, ok := c.host.Editor(f.editor)
	if !ok {
		return
	}

	if f.err != nil {
		c.states[f.editor] = Idle
		c.logger.Error("Failed to decorate %s: %v", filepath.Base(ed.Path()), f.err)
		c.report(Pass{Editor: f.editor, Outcome: metrics.OutcomeFailed, Err: dserrors.ToolFailure("decoration", f.err)})
		return
	}

	patches := reveal.Plan(f.source, f.mapping)
	c.renderer.Render(ed, patches)
	c.states[f.editor] = Idle
	c.logger.Debug("Revealed %d secrets in %s", len(patches), filepath.Base(ed.Path()))
	c.report(Pass{Editor: f.editor, Outcome: metrics.OutcomeApplied, Patches: len(patches)})
}

func (c *Controller) forget(id editor.ID) {
	if _, ok := c.cancels[id]; ok {
		c.supersede(id)
	}
	// gens[id] survives so a reopened editor never reuses a generation
	// still in flight.
	delete(c.states, id)
	c.renderer.Forget(id)
}

func (c *Controller) stateOf(id editor.ID) State {
	if s, ok := c.states[id]; ok {
		return s
	}
	if c.enabled {
		return Idle
	}
	return Disabled
}

func (c *Controller) report(p Pass) {
	c.metrics.RecordPass(p.Outcome, p.Patches)
	if c.onPass != nil {
		c.onPass(p)
	}
}

func (c *Controller) loadEnabled() bool {
	if c.prefs == nil {
		return false
	}
	prefs, err := c.prefs.Load()
	if err != nil {
		c.logger.Warn("Could not read settings, keeping reveal %s: %v", onOff(c.enabled), err)
		return c.enabled
	}
	return prefs.EnableAutoReveal
}

func (c *Controller) persist(enabled bool) {
	if c.prefs == nil {
		return
	}
	prefs, err := c.prefs.Load()
	if err != nil {
		c.logger.Warn("Could not read settings: %v", err)
		prefs = config.Defaults()
	}
	if prefs.EnableAutoReveal == enabled {
		return
	}
	prefs.EnableAutoReveal = enabled
	if err := c.prefs.Save(prefs); err != nil {
		c.logger.Error("Failed to save reveal setting: %v", err)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
