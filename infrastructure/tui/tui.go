// Package tui provides a Bubble Tea terminal user interface for vid2mp3.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vid2mp3/application/pipeline"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// Runner executes one conversion pipeline run. The pipeline service
// satisfies it; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, input pipeline.Input) (*pipeline.Result, error)
}

// RunnerFactory builds a Runner that writes its progress to the given
// log sink. The factory runs once per conversion so each run starts
// with fresh service state.
type RunnerFactory func(logs *LogBuffer) (Runner, error)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateConverting
	StateComplete
	StateError
)

// LogBuffer collects progress lines from a running pipeline. It is an
// io.Writer safe for use from the pipeline goroutine while the UI
// goroutine polls Lines.
type LogBuffer struct {
	mu      sync.Mutex
	lines   []string
	partial string
}

// Write implements io.Writer, splitting the stream into display lines.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial += string(p)
	for {
		idx := strings.IndexByte(b.partial, '\n')
		if idx < 0 {
			break
		}
		if line := strings.TrimRight(b.partial[:idx], "\r"); line != "" {
			b.lines = append(b.lines, line)
		}
		b.partial = b.partial[idx+1:]
	}
	return len(p), nil
}

// Lines returns a snapshot of the collected lines.
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state        State
	pathInput    textinput.Model
	bitrateInput textinput.Model
	spinner      spinner.Model
	focusBitrate bool

	factory RunnerFactory
	logs    *LogBuffer
	result  *pipeline.Result
	err     error

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(factory RunnerFactory) Model {
	pi := textinput.New()
	pi.Placeholder = "/path/to/video.mp4"
	pi.Focus()
	pi.CharLimit = 500
	pi.Width = 60

	bi := textinput.New()
	bi.Placeholder = "128k"
	bi.CharLimit = 10
	bi.Width = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateInput,
		pathInput:    pi,
		bitrateInput: bi,
		spinner:      sp,
		factory:      factory,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// RunDoneMsg is sent when the pipeline finishes.
	RunDoneMsg struct {
		Result *pipeline.Result
		Err    error
	}

	// TickMsg is for periodic log refreshes while converting.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
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
			if m.state == StateConverting {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab":
			if m.state == StateInput {
				m.focusBitrate = !m.focusBitrate
				if m.focusBitrate {
					m.pathInput.Blur()
					m.bitrateInput.Focus()
				} else {
					m.bitrateInput.Blur()
					m.pathInput.Focus()
				}
			}

		case "enter":
			if m.state == StateInput && m.pathInput.Value() != "" {
				m.state = StateConverting
				m.logs = &LogBuffer{}
				return m, tea.Batch(m.startConversion(), m.spinner.Tick, m.tickLogs())
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.result = nil
				m.err = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.pathInput.SetValue("")
				m.pathInput.Focus()
				m.bitrateInput.Blur()
				m.focusBitrate = false
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case RunDoneMsg:
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
			m.result = msg.Result
		}

	case TickMsg:
		if m.state == StateConverting {
			cmds = append(cmds, m.tickLogs())
		}
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		if m.focusBitrate {
			m.bitrateInput, cmd = m.bitrateInput.Update(msg)
		} else {
			m.pathInput, cmd = m.pathInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickLogs returns a command to refresh the log display.
func (m Model) tickLogs() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startConversion runs the pipeline in the background.
func (m *Model) startConversion() tea.Cmd {
	ctx := m.ctx
	logs := m.logs
	path := m.pathInput.Value()
	bitrate := m.bitrateInput.Value()
	factory := m.factory

	return func() tea.Msg {
		runner, err := factory(logs)
		if err != nil {
			return RunDoneMsg{Err: err}
		}
		result, err := runner.Run(ctx, pipeline.Input{
			SourcePath: path,
			Bitrate:    bitrate,
		})
		return RunDoneMsg{Result: result, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vid2mp3"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Convert video audio tracks to MP3"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateConverting:
		b.WriteString(m.viewConverting())
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

	b.WriteString(subtitleStyle.Render("Video file:"))
	b.WriteString("\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Bitrate:"))
	b.WriteString("\n")
	b.WriteString(m.bitrateInput.View())
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewConverting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Converting..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	lines := []string{"Conversion complete!"}
	if m.result != nil {
		lines = append(lines, "", "MP3: "+m.result.OutputPath)
		if m.result.TranscriptPath != "" {
			lines = append(lines, "Transcript: "+m.result.TranscriptPath)
		}
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	if m.logs == nil {
		return ""
	}

	lines := m.logs.Lines()
	// Keep only the last 10 lines on screen
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}

	var b strings.Builder
	for _, line := range lines {
		style := infoStyle
		if strings.HasPrefix(line, "Warning:") {
			style = warningStyle
		} else if strings.Contains(line, "complete") || strings.Contains(line, "saved") {
			style = successStyle
		}
		b.WriteString(style.Render("> " + line))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: convert | tab: switch field | esc: quit"
	case StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new conversion | q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(factory RunnerFactory) error {
	p := tea.NewProgram(NewModel(factory), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
