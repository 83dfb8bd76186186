// Package tui is an interactive archive browser: a thread list on the left,
// the selected thread's messages in a viewport on the right.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leorami/signal-export/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B45FD"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B45FD"))

	meStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00BFFF"))

	senderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	callStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	attStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type Browser struct {
	threads []models.Thread
}

func NewBrowser(threads []models.Thread) *Browser {
	return &Browser{threads: threads}
}

func (b *Browser) Run() error {
	p := tea.NewProgram(initialModel(b.threads), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type listItem struct {
	thread models.Thread
}

func (i listItem) FilterValue() string { return i.thread.Label }

func (i listItem) Title() string {
	title := i.thread.Label
	if i.thread.Unknown {
		title += " ❓"
	}
	return title
}

func (i listItem) Description() string {
	n := len(i.thread.Messages)
	if n == 0 {
		return "empty"
	}
	last := time.UnixMilli(i.thread.Messages[n-1].TS)
	return fmt.Sprintf("%d messages | %s", n, last.Format("2006-01-02 15:04"))
}

type model struct {
	threads  []models.Thread
	list     list.Model
	viewport viewport.Model
	selected *models.Thread
	width    int
	height   int
	ready    bool
}

func initialModel(threads []models.Thread) model {
	items := make([]list.Item, len(threads))
	for i, th := range threads {
		items[i] = listItem{thread: th}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Threads"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)

	return model{
		threads:  threads,
		list:     l,
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := m.width / 3
		m.list.SetSize(listWidth, m.height-2)
		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				th := item.thread
				m.selected = &th
				m.updateViewport()
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewport() {
	if m.selected == nil {
		m.viewport.SetContent("Select a thread to view")
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.selected.Label))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("%d messages", len(m.selected.Messages)))
	if m.selected.AvatarEncrypted {
		content.WriteString(" | avatar still encrypted")
	}
	content.WriteString("\n" + strings.Repeat("─", 40) + "\n\n")

	for _, msg := range m.selected.Messages {
		content.WriteString(renderMessage(msg))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func renderMessage(msg models.Message) string {
	var b strings.Builder

	when := time.UnixMilli(msg.TS).Format("2006-01-02 15:04")
	if msg.Kind == "call" {
		icon := "📞"
		if msg.Video {
			icon = "📹"
		}
		b.WriteString(callStyle.Render(fmt.Sprintf("%s %s  %s", icon, msg.Body, when)))
		b.WriteString("\n")
		return b.String()
	}

	if msg.Out {
		b.WriteString(meStyle.Render("Me"))
	} else {
		name := msg.Sender
		if name == "" {
			name = "other"
		}
		b.WriteString(senderStyle.Render(name))
	}
	b.WriteString(helpStyle.Render("  " + when))
	b.WriteString("\n")

	if msg.Body != "" {
		b.WriteString(msg.Body)
		b.WriteString("\n")
	}
	for _, att := range msg.Atts {
		line := fmt.Sprintf("%s %s (%s)", att.Icon, att.Name, att.MIME)
		if att.LikelyEncrypted {
			line += " 🔒"
		}
		b.WriteString(attStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	listView := paneStyle.
		Width(m.width/3 - 2).
		Height(m.height - 2).
		Render(m.list.View())

	contentView := paneStyle.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 2).
		Render(m.viewport.View())

	help := helpStyle.Render("  j/k: navigate • enter: open • /: filter • q: quit")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		listView,
		contentView,
	) + "\n" + help
}
