package editor

// Event is something that happened in the host and may require the reveal
// state to be refreshed.
type Event interface {
	isEvent()
}

// EditorActivated is sent when the focused editor changes.
type EditorActivated struct {
	Editor ID
}

// DocumentOpened is sent when a document is opened in an editor.
type DocumentOpened struct {
	Editor ID
}

// DocumentChanged is sent when the text of an open document changes.
type DocumentChanged struct {
	Editor ID
}

// EditorClosed is sent when an editor goes away.
type EditorClosed struct {
	Editor ID
}

// ConfigChanged is sent when persisted settings change. Keys lists the
// setting names that changed; an empty list means "unknown, re-read all".
type ConfigChanged struct {
	Keys []string
}

// Affects reports whether key is among the changed settings.
func (c ConfigChanged) Affects(key string) bool {
	if len(c.Keys) == 0 {
		return true
	}
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// ToggleRequested flips reveal on or off. When Enable is nil the current
// state is inverted.
type ToggleRequested struct {
	Enable *bool
}

// RedecorateRequested asks for a fresh pass on one editor.
type RedecorateRequested struct {
	Editor ID
}

func (EditorActivated) isEvent()     {}
func (DocumentOpened) isEvent()      {}
func (DocumentChanged) isEvent()     {}
func (EditorClosed) isEvent()        {}
func (ConfigChanged) isEvent()       {}
func (ToggleRequested) isEvent()     {}
func (RedecorateRequested) isEvent() {}
