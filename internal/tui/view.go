// Package tui is an interactive viewer for dotenv files with secrets
// revealed inline.
//
// Every file passed to Run is opened as an editor buffer. The reveal
// controller decorates buffers; the view redraws when decorations change.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/systmms/envlens/internal/controller"
	"github.com/systmms/envlens/internal/editor"
	"github.com/systmms/envlens/internal/overlay"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	lensStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "75"})
	secretStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(overlay.PlaintextColor))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

// Reveal is the part of the controller the view drives.
type Reveal interface {
	Submit(ev editor.Event)
	Toggle()
	Enabled(ctx context.Context) (bool, error)
}

type redrawMsg struct{}

type passMsg controller.Pass

type enabledMsg bool

// Model is the bubbletea model of the viewer.
type Model struct {
	host    *editor.MemoryHost
	reveal  Reveal
	enabled bool
	status  string
	failed  bool
	width   int
}

// NewModel returns a viewer over host.
func NewModel(host *editor.MemoryHost, reveal Reveal) Model {
	return Model{host: host, reveal: reveal}
}

// Run opens the viewer and blocks until the user quits. passes must receive
// every controller pass; decorations changes are observed through the host.
func Run(ctx context.Context, host *editor.MemoryHost, reveal Reveal, passes <-chan controller.Pass) error {
	m := NewModel(host, reveal)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))

	host.OnDecorate(func(editor.ID) { p.Send(redrawMsg{}) })
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case pass, ok := <-passes:
				if !ok {
					return
				}
				p.Send(passMsg(pass))
			}
		}
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.refreshEnabled()
}

func (m *Model) refreshEnabled() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		enabled, err := m.reveal.Enabled(ctx)
		if err != nil {
			return nil
		}
		return enabledMsg(enabled)
	}
}

// Update handles key presses and controller notifications.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.cycle(1)
		case "shift+tab", "left", "h":
			m.cycle(-1)
		case "r", "t":
			m.reveal.Toggle()
			m.enabled = !m.enabled
			m.status = ""
			return m, m.refreshEnabled()
		}
	case enabledMsg:
		m.enabled = bool(msg)
	case passMsg:
		if msg.Err != nil {
			m.status = firstLine(msg.Err.Error())
			m.failed = true
		} else {
			m.status = fmt.Sprintf("%s: %s", msg.Outcome, pluralize(msg.Patches, "secret"))
			m.failed = false
		}
		return m, m.refreshEnabled()
	case redrawMsg:
	}
	return m, nil
}

func (m *Model) cycle(step int) {
	editors := m.host.Editors()
	if len(editors) == 0 {
		return
	}
	current := 0
	if active := m.host.ActiveEditor(); active != nil {
		for i, ed := range editors {
			if ed.ID() == active.ID() {
				current = i
				break
			}
		}
	}
	next := editors[(current+step+len(editors))%len(editors)]
	if m.host.Activate(next.ID()) {
		m.reveal.Submit(editor.EditorActivated{Editor: next.ID()})
	}
}

// View renders tabs, the lens line, the active document and a status bar.
func (m *Model) View() string {
	var b strings.Builder

	active := m.host.ActiveEditor()
	var tabs []string
	for _, ed := range m.host.Editors() {
		name := filepath.Base(ed.Path())
		if active != nil && ed.ID() == active.ID() {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if active == nil {
		b.WriteString(helpStyle.Render("No file open"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(lensStyle.Render(controller.LensTitle(m.enabled)))
	b.WriteString("\n\n")

	var decorations []editor.Decoration
	if buf, ok := m.host.Buffer(active.ID()); ok {
		decorations = buf.Decorations()
	}
	b.WriteString(overlay.Project(active.Text(), decorations, func(s string) string { return secretStyle.Render(s) }))
	if !strings.HasSuffix(active.Text(), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.status != "" {
		if m.failed {
			b.WriteString(errStyle.Render(m.status))
		} else {
			b.WriteString(helpStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: next file • r: " + strings.ToLower(controller.LensTitle(m.enabled)) + " • q: quit"))
	b.WriteString("\n")
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
