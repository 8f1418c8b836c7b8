// Package tui provides a Bubble Tea terminal user interface for tapmusic-collage.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/tapmusic-collage/internal/config"
	"github.com/handiism/tapmusic-collage/internal/download"
	"github.com/handiism/tapmusic-collage/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDownloading
	StateComplete
	StateError
)

const (
	focusUser = iota
	focusDirectory
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	userInput textinput.Model
	dirInput  textinput.Model
	focus     int
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	err       error

	sizeIdx   int
	periodIdx int
	caption   bool
	playcount bool

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	result  *download.Result

	receivedBytes int64
	totalBytes    int64

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ui := textinput.New()
	ui.Placeholder = "last.fm username"
	ui.Focus()
	ui.CharLimit = 64
	ui.Width = 40

	di := textinput.New()
	di.Placeholder = "directory"
	di.SetValue(settings.DownloadsPath)
	di.CharLimit = 500
	di.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		userInput: ui,
		dirInput:  di,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		sizeIdx:   1, // 4x4
		caption:   settings.ShowCaption,
		playcount: settings.ShowPlaycount,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// DownloadDoneMsg is sent when the collage has been fetched and saved, or failed.
	DownloadDoneMsg struct {
		Result *download.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading {
				m.cancel()
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.toggleFocus()
			}
			return m, nil

		case "ctrl+s":
			if m.state == StateInput {
				m.sizeIdx = (m.sizeIdx + 1) % len(model.Sizes)
			}
			return m, nil

		case "ctrl+t":
			if m.state == StateInput {
				m.periodIdx = (m.periodIdx + 1) % len(model.Periods)
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.caption = !m.caption
			}
			return m, nil

		case "ctrl+p":
			if m.state == StateInput {
				m.playcount = !m.playcount
			}
			return m, nil

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.userInput.Value()) != "" {
				return m.start()
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.err = nil
				m.result = nil
				m.manager = nil
				m.receivedBytes = 0
				m.totalBytes = 0
				m.cancel()
				m.ctx, m.cancel = context.WithCancel(context.Background())
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DownloadDoneMsg:
		m.manager = nil
		switch {
		case msg.Err != nil && m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.result = msg.Result
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.receivedBytes, m.totalBytes = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		if m.focus == focusUser {
			m.userInput, cmd = m.userInput.Update(msg)
		} else {
			m.dirInput, cmd = m.dirInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.focus == focusUser {
		m.focus = focusDirectory
		m.userInput.Blur()
		m.dirInput.Focus()
		return
	}
	m.focus = focusUser
	m.dirInput.Blur()
	m.userInput.Focus()
}

// start validates the form and launches the download.
func (m Model) start() (tea.Model, tea.Cmd) {
	req, err := model.NewCollageRequest(
		strings.TrimSpace(m.userInput.Value()),
		model.Sizes[m.sizeIdx].String(),
		string(model.Periods[m.periodIdx]),
		m.caption,
		m.playcount,
	)
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	target, err := model.ResolveTarget(strings.TrimSpace(m.dirInput.Value()), req, "", time.Now(), m.settings.ToPathConfig())
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	manager, err := download.NewManager(m.downloadSettings(), nil)
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	m.manager = manager
	m.state = StateDownloading
	return m, tea.Batch(runDownload(m.ctx, manager, req, target), m.tickProgress(), m.spinner.Tick)
}

// downloadSettings returns a copy of the settings in which the target
// directory is always created, as the form prefills one that may not exist yet.
func (m Model) downloadSettings() *config.Settings {
	s := *m.settings
	s.CreateDirectory = true
	return &s
}

func runDownload(ctx context.Context, manager *download.Manager, req *model.CollageRequest, target *model.OutputTarget) tea.Cmd {
	return func() tea.Msg {
		result, err := manager.Run(ctx, req, target)
		return DownloadDoneMsg{Result: result, Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) percent() float64 {
	if m.totalBytes <= 0 {
		return 0
	}
	return float64(m.receivedBytes) / float64(m.totalBytes)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tapmusic collage"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Save your last.fm listening collage"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Username:"))
	b.WriteString("\n")
	b.WriteString(m.userInput.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Save to:"))
	b.WriteString("\n")
	b.WriteString(m.dirInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Size:   "))
	for i, s := range model.Sizes {
		b.WriteString(choice(s.Grid(), i == m.sizeIdx))
	}
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("Period: "))
	for i, p := range model.Periods {
		b.WriteString(choice(string(p), i == m.periodIdx))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s Captions (ctrl+o)\n", checkbox(m.caption)))
	b.WriteString(fmt.Sprintf("  %s Play counts (ctrl+p)\n", checkbox(m.playcount)))

	return b.String()
}

func choice(label string, selected bool) string {
	if selected {
		return selectedStyle.Render("[" + label + "]")
	}
	return dimStyle.Render(" " + label + " ")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Rendering collage for %s...", m.userInput.Value())))
	b.WriteString("\n\n")

	if m.totalBytes > 0 {
		b.WriteString(m.progress.ViewAs(m.percent()))
		b.WriteString("\n")
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("Downloaded: %.1f KB", float64(m.receivedBytes)/1024)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewComplete() string {
	if m.result == nil {
		return ""
	}
	return boxStyle.Render(fmt.Sprintf(
		"Collage saved!\n\n"+
			"Path: %s\n"+
			"Size: %.1f KB",
		m.result.Path,
		float64(m.result.Bytes)/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • ctrl+s: size • ctrl+t: period • esc: quit"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new collage • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
