package editor

import (
	"sort"
	"sync"
)

// Buffer is an in-memory Editor. Hosts that draw to a terminal keep one per
// open file; tests use it as a fake editor.
type Buffer struct {
	id   ID
	path string

	mu          sync.RWMutex
	text        string
	decorations []Decoration
	onDecorate  func(ID)
}

// NewBuffer creates a buffer holding text for path.
func NewBuffer(id ID, path, text string) *Buffer {
	return &Buffer{id: id, path: path, text: text}
}

func (b *Buffer) ID() ID       { return b.id }
func (b *Buffer) Path() string { return b.path }

func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SetText replaces the document text. Decorations are left alone; the owner
// is expected to send a DocumentChanged event.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

func (b *Buffer) SetDecorations(decorations []Decoration) {
	b.mu.Lock()
	b.decorations = append([]Decoration(nil), decorations...)
	notify := b.onDecorate
	b.mu.Unlock()

	if notify != nil {
		notify(b.id)
	}
}

// Decorations returns a copy of the current decorations.
func (b *Buffer) Decorations() []Decoration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Decoration(nil), b.decorations...)
}

// MemoryHost is a Host over a set of Buffers.
type MemoryHost struct {
	mu       sync.RWMutex
	buffers  map[ID]*Buffer
	active   ID
	onChange func(ID)
}

// NewMemoryHost returns an empty host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{buffers: make(map[ID]*Buffer)}
}

// OnDecorate registers fn to be called whenever any buffer's decorations are
// replaced. Hosts use it to schedule a redraw.
func (h *MemoryHost) OnDecorate(fn func(ID)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
	for _, b := range h.buffers {
		b.mu.Lock()
		b.onDecorate = fn
		b.mu.Unlock()
	}
}

// Open adds a buffer and makes it active. Opening an id twice replaces the
// earlier buffer.
func (h *MemoryHost) Open(id ID, path, text string) *Buffer {
	b := NewBuffer(id, path, text)

	h.mu.Lock()
	defer h.mu.Unlock()
	b.onDecorate = h.onChange
	h.buffers[id] = b
	h.active = id
	return b
}

// Close removes a buffer. If it was active, no editor is active afterwards.
func (h *MemoryHost) Close(id ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.buffers, id)
	if h.active == id {
		h.active = ""
	}
}

// Activate focuses an open buffer. It reports false for unknown ids.
func (h *MemoryHost) Activate(id ID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.buffers[id]; !ok {
		return false
	}
	h.active = id
	return true
}

// Buffer returns the concrete buffer for id.
func (h *MemoryHost) Buffer(id ID) (*Buffer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.buffers[id]
	return b, ok
}

// Editors returns open editors sorted by id.
func (h *MemoryHost) Editors() []Editor {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.buffers))
	for id := range h.buffers {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	out := make([]Editor, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.buffers[ID(id)])
	}
	return out
}

func (h *MemoryHost) ActiveEditor() Editor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if b, ok := h.buffers[h.active]; ok {
		return b
	}
	return nil
}

func (h *MemoryHost) Editor(id ID) (Editor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.buffers[id]
	if !ok {
		return nil, false
	}
	return b, true
}

var (
	_ Editor = (*Buffer)(nil)
	_ Host   = (*MemoryHost)(nil)
)
