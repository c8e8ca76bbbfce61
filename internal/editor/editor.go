// Package editor defines the boundary between envlens and a host editor.
//
// A host (the terminal watcher, the interactive viewer, or a test fake)
// exposes its open editors through Host and reports what happens to them as
// typed Event values. Decorations are the only thing envlens ever hands back;
// the document text is never modified.
package editor

// ID identifies an editor instance for as long as it is open.
type ID string

// Position is a zero-based location in a document. Character is a byte
// offset within the line.
type Position struct {
	Line      int
	Character int
}

// Range is a zero-based span in a document.
type Range struct {
	Start Position
	End   Position
}

// Decoration is a non-destructive overlay on a range of text.
type Decoration struct {
	Range Range
	// Mask hides the underlying text while keeping its width.
	Mask bool
	// After is rendered immediately after the range.
	After string
	// AfterColor is a hex colour such as "#328f8f".
	AfterColor string
	// Hover is shown when the pointer rests on the range.
	Hover string
}

// Editor is one open document view.
type Editor interface {
	ID() ID
	// Path is the file system path of the document.
	Path() string
	// Text returns the current in-memory document text.
	Text() string
	// SetDecorations replaces every decoration envlens owns on this editor.
	SetDecorations(decorations []Decoration)
}

// Host gives access to the editors a host currently has open.
type Host interface {
	Editors() []Editor
	// ActiveEditor returns the focused editor, or nil when none is.
	ActiveEditor() Editor
	// Editor looks up an open editor by id.
	Editor(id ID) (Editor, bool)
}
