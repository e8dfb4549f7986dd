package ui

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// cursorStyle highlights the selected entry.
	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

const maxLogLines = 100

// Entry is one listed directory entry.
type Entry struct {
	Name string
	Attr fsmeta.FileAttr
}

// DirLoadedMsg carries the result of listing a directory.
type DirLoadedMsg struct {
	Path    string
	Entries []Entry
	Err     error
}

// TeaModel is the [tea.Model] of the directory browser.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders  int
	splitWidthWithBorders int

	cwd       string
	entries   []Entry
	cursor    int
	totalSize uint64
	loadErr   error

	shareProgress progress.Model
	listViewport  viewport.Model
	logsViewport  viewport.Model
	logs          []string

	ready bool
}

// NewTeaModel returns the browser model starting out in root.
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, root string, cancel context.CancelFunc) TeaModel {
	return TeaModel{
		uiHandler: uiHandler,
		cwd:       root,
		shareProgress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
		listViewport: viewport.New(80, 20),
		logsViewport: viewport.New(80, 5),
		logs:         make([]string, 0, maxLogLines),
		cancel:       cancel,
	}
}

// Init switches to the alternate screen and lists the starting directory.
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		loadDir(m.uiHandler.fs, m.cwd),
	)
}

// loadDir produces a [tea.Cmd] listing dir through the directory stream.
// The "." and ".." entries are left out; directories sort first.
func loadDir(fs dirProvider, dir string) tea.Cmd {
	return func() tea.Msg {
		stream, err := fs.ReadDir(dir)
		if err != nil {
			return DirLoadedMsg{Path: dir, Err: err}
		}
		defer stream.Close()

		var entries []Entry
		for entry, err := range stream.All() {
			if err != nil {
				return DirLoadedMsg{Path: dir, Err: err}
			}
			if entry.Name() == "." || entry.Name() == ".." {
				continue
			}

			attr, err := entry.Metadata()
			if err != nil {
				continue
			}

			entries = append(entries, Entry{Name: entry.Name(), Attr: attr})
		}

		slices.SortFunc(entries, func(a, b Entry) int {
			aDir, bDir := a.Attr.FileType().IsDir(), b.Attr.FileType().IsDir()
			if aDir != bDir {
				if aDir {
					return -1
				}

				return 1
			}

			return strings.Compare(a.Name, b.Name)
		})

		return DirLoadedMsg{Path: dir, Entries: entries}
	}
}

// Update is the principal message handling method of the model.
//
//nolint:mnd,funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			if sel, ok := m.selected(); ok && sel.Attr.FileType().IsDir() {
				cmds = append(cmds, loadDir(m.uiHandler.fs, joinPath(m.cwd, sel.Name)))
			}
		case "backspace", "left", "h":
			if parent := path.Dir(m.cwd); parent != m.cwd {
				cmds = append(cmds, loadDir(m.uiHandler.fs, parent))
			}
		case "r":
			cmds = append(cmds, loadDir(m.uiHandler.fs, m.cwd))
		}

		m.renderList()
		cmds = append(cmds, m.shareProgress.SetPercent(m.selectedShare()))

		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 2) - 2

		m.shareProgress.Width = m.splitWidthWithBorders

		// The listing takes about 60% of the height.
		upperHeight := m.height * 3 / 5
		lowerHeight := m.height - upperHeight

		m.listViewport.Width = m.splitWidthWithBorders
		m.listViewport.Height = max(upperHeight-3, 1)

		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = max(lowerHeight-4, 1)

		m.renderList()
		m.renderLogs()

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case DirLoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			m.logs = appendLog(m.logs, fmt.Sprintf("%s: %v\n", msg.Path, msg.Err))
			m.renderLogs()

			break
		}

		m.loadErr = nil
		m.cwd = msg.Path
		m.entries = msg.Entries
		m.cursor = 0
		m.totalSize = 0
		for _, e := range m.entries {
			if !e.Attr.FileType().IsDir() {
				m.totalSize += e.Attr.Size()
			}
		}

		m.renderList()
		cmds = append(cmds, m.shareProgress.SetPercent(m.selectedShare()))

	case LogMsg:
		m.logs = appendLog(m.logs, string(msg))
		m.renderLogs()

	case progress.FrameMsg:
		updated, cmd := m.shareProgress.Update(msg)
		if progressModel, ok := updated.(progress.Model); ok {
			m.shareProgress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func appendLog(logs []string, line string) []string {
	if len(logs) >= maxLogLines {
		logs = logs[1:]
	}

	return append(logs, line)
}

func (m *TeaModel) renderLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

func (m *TeaModel) renderList() {
	if len(m.entries) == 0 {
		m.listViewport.SetContent("(empty)")

		return
	}

	var b strings.Builder
	for i, e := range m.entries {
		line := "  " + e.Name
		if e.Attr.FileType().IsDir() {
			line += "/"
		}
		if i == m.cursor {
			line = cursorStyle.Render("> " + line[2:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	m.listViewport.SetContent(strings.TrimSuffix(b.String(), "\n"))

	// Keep the cursor on screen.
	switch {
	case m.cursor < m.listViewport.YOffset:
		m.listViewport.SetYOffset(m.cursor)
	case m.cursor >= m.listViewport.YOffset+m.listViewport.Height:
		m.listViewport.SetYOffset(m.cursor - m.listViewport.Height + 1)
	}
}

func (m TeaModel) selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return Entry{}, false
	}

	return m.entries[m.cursor], true
}

// selectedShare is the part of the listed file bytes taken by the selection.
func (m TeaModel) selectedShare() float64 {
	sel, ok := m.selected()
	if !ok || m.totalSize == 0 || sel.Attr.FileType().IsDir() {
		return 0
	}

	return float64(sel.Attr.Size()) / float64(m.totalSize)
}

func joinPath(dir, name string) string {
	return path.Join(dir, name)
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the browser..."
	}

	listView := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render(m.cwd),
		m.listViewport.View(),
	)

	upperSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(listView),
		borderStyle.Width(m.splitWidthWithBorders).Render(m.formatDetailsView()),
	)

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Logs"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("↑/↓: select • enter: open • backspace: parent • r: reload • q: quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		upperSection,
		logsSection,
		helpSection,
	)
}

// formatDetailsView renders the metadata panel of the selected entry.
func (m TeaModel) formatDetailsView() string {
	var details string

	sel, ok := m.selected()
	switch {
	case m.loadErr != nil:
		details = fmt.Sprintf("Error: %v\n", m.loadErr)
	case !ok:
		details = "Nothing selected\n"
	default:
		modified := "unknown"
		if mtime, err := sel.Attr.Modified(); err == nil {
			modified = humanize.Time(mtime)
		}

		details = fmt.Sprintf(
			"Name: %s\n"+
				"Type: %s\n"+
				"Size: %s (%s bytes)\n"+
				"Mode: %s\n"+
				"Owner: %d:%d\n"+
				"Inode: %d (links: %d)\n"+
				"Modified: %s\n",
			sel.Name,
			sel.Attr.FileType(),
			humanize.IBytes(sel.Attr.Size()),
			humanize.Comma(int64(sel.Attr.Size())), //nolint:gosec
			sel.Attr.FileMode(),
			sel.Attr.UID(), sel.Attr.GID(),
			sel.Attr.Ino(), sel.Attr.Nlink(),
			modified,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Details"),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
		fmt.Sprintf("Share of %s listed:", humanize.IBytes(m.totalSize)),
		m.shareProgress.View(),
	)
}
