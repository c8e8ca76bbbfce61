// Package overlay turns reveal patches into editor decorations.
//
// Patches carry 1-based line numbers; this package is the single place
// where they become 0-based editor positions.
package overlay

import (
	"sort"
	"strings"

	"github.com/systmms/envlens/internal/editor"
	"github.com/systmms/envlens/internal/reveal"
)

// PlaintextColor is the colour used for revealed values.
const PlaintextColor = "#328f8f"

// Renderer owns the overlay state of every editor it has drawn on. It is not
// safe for concurrent use; the controller calls it from its event loop only.
type Renderer struct {
	state map[editor.ID][]editor.Decoration
}

// NewRenderer returns a renderer with no active overlays.
func NewRenderer() *Renderer {
	return &Renderer{state: make(map[editor.ID][]editor.Decoration)}
}

// Render replaces every overlay on ed with one decoration per patch. An empty
// patch list is the same as Clear.
func (r *Renderer) Render(ed editor.Editor, patches []reveal.Patch) {
	if len(patches) == 0 {
		r.Clear(ed)
		return
	}

	decorations := make([]editor.Decoration, 0, len(patches))
	for _, p := range patches {
		decorations = append(decorations, Decorate(p))
	}

	r.state[ed.ID()] = decorations
	ed.SetDecorations(decorations)
}

// Clear removes all overlays from ed. Clearing an editor that has none is a
// no-op as far as the editor is concerned.
func (r *Renderer) Clear(ed editor.Editor) {
	if _, ok := r.state[ed.ID()]; !ok {
		return
	}
	delete(r.state, ed.ID())
	ed.SetDecorations(nil)
}

// Forget drops the state kept for an editor that has been closed.
func (r *Renderer) Forget(id editor.ID) {
	delete(r.state, id)
}

// Overlays returns a copy of the active decorations for id.
func (r *Renderer) Overlays(id editor.ID) []editor.Decoration {
	return append([]editor.Decoration(nil), r.state[id]...)
}

// Active reports the ids of editors that currently have overlays.
func (r *Renderer) Active() []editor.ID {
	ids := make([]editor.ID, 0, len(r.state))
	for id := range r.state {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Decorate converts one patch into its decoration.
func Decorate(p reveal.Patch) editor.Decoration {
	return editor.Decoration{
		Range: editor.Range{
			Start: editor.Position{Line: p.Range.StartLine - 1, Character: p.Range.StartColumn},
			End:   editor.Position{Line: p.Range.EndLine - 1, Character: p.Range.EndColumn},
		},
		Mask:       true,
		After:      `"` + p.Plaintext + `"`,
		AfterColor: PlaintextColor,
		Hover:      "Decrypted from " + p.EncryptedToken,
	}
}

// Project draws decorations onto text for hosts that can only show plain
// characters: each masked range is replaced by style(After). Decorations that
// do not fit their line are ignored. A nil style prints After unchanged.
func Project(text string, decorations []editor.Decoration, style func(string) string) string {
	if len(decorations) == 0 {
		return text
	}
	if style == nil {
		style = func(s string) string { return s }
	}

	byLine := make(map[int][]editor.Decoration)
	for _, d := range decorations {
		if d.Range.Start.Line != d.Range.End.Line {
			continue
		}
		byLine[d.Range.Start.Line] = append(byLine[d.Range.Start.Line], d)
	}

	lines := strings.Split(text, "\n")
	for n, decs := range byLine {
		if n < 0 || n >= len(lines) {
			continue
		}
		line := lines[n]
		// right to left so earlier offsets stay valid
		sort.Slice(decs, func(i, j int) bool { return decs[i].Range.Start.Character > decs[j].Range.Start.Character })
		for _, d := range decs {
			start, end := d.Range.Start.Character, d.Range.End.Character
			if start < 0 || end > len(line) || start >= end {
				continue
			}
			if d.Mask {
				line = line[:start] + style(d.After) + line[end:]
			} else {
				line = line[:end] + style(d.After) + line[end:]
			}
		}
		lines[n] = line
	}

	return strings.Join(lines, "\n")
}
