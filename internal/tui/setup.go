// ABOUTME: Interactive TUI wizard for registering X developer app credentials.
// ABOUTME: 3-step bubbletea model collecting client ID, client secret, and callback port.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultPort is the default OAuth callback port.
const DefaultPort = 8739

// Step represents the current wizard step.
type Step int

const (
	StepClientID Step = iota
	StepClientSecret
	StepPort
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn checks the entered credentials and callback port.
type ValidateFn func(ctx context.Context, clientID, clientSecret string, port int) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It must be a pointer field so value-receiver methods can store the cancel
// func and have every copy of the model see it.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [3]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling existing values.
// A port of 0 leaves the port input empty so Enter picks the default.
func NewSetupModel(clientID, clientSecret string, port int) SetupModel {
	idInput := textinput.New()
	idInput.Placeholder = "your-client-id"
	idInput.Focus()
	idInput.Width = 50
	if clientID != "" {
		idInput.SetValue(clientID)
	}

	secretInput := textinput.New()
	secretInput.Placeholder = "your-client-secret"
	secretInput.EchoMode = textinput.EchoPassword
	secretInput.Width = 50
	if clientSecret != "" {
		secretInput.SetValue(clientSecret)
	}

	portInput := textinput.New()
	portInput.Placeholder = strconv.Itoa(DefaultPort)
	portInput.CharLimit = 5
	portInput.Width = 10
	if port > 0 {
		portInput.SetValue(strconv.Itoa(port))
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepClientID,
		inputs:     [3]textinput.Model{idInput, secretInput, portInput},
		spinner:    s,
		validateFn: ValidateSetup,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepClientID, StepClientSecret, StepPort:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		m.inputs[idx].SetValue(strings.TrimSpace(m.inputs[idx].Value()))

		// Don't advance on empty credentials
		if m.step != StepPort && m.inputs[idx].Value() == "" {
			return m, nil
		}
		if m.step == StepPort && m.inputs[2].Value() == "" {
			m.inputs[2].SetValue(strconv.Itoa(DefaultPort))
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepClientID:
			m.step = StepClientSecret
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepClientSecret:
			m.step = StepPort
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepPort:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	clientID, clientSecret, port := m.Result()
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, clientID, clientSecret, port)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   xbm"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Register your X developer app (OAuth 2.0 client).\n\n")

	switch m.step {
	case StepClientID:
		b.WriteString(stepStyle.Render("Step 1 of 3: Client ID"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepClientSecret:
		b.WriteString(fmt.Sprintf("  Client ID: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Client Secret"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepPort:
		b.WriteString(fmt.Sprintf("  Client ID: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Client Secret: %s\n\n", mask(m.inputs[1].Value())))
		b.WriteString(stepStyle.Render("Step 3 of 3: Callback Port"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(fmt.Sprintf("(press Enter for %d; register http://127.0.0.1:<port>/callback in the X portal)", DefaultPort)))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Client ID: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Client Secret: %s\n", mask(m.inputs[1].Value())))
		b.WriteString(fmt.Sprintf("  Callback Port: %s\n\n", m.inputs[2].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating settings...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Saved! Next: xbm auth login"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

func mask(s string) string {
	return strings.Repeat("*", len(s))
}

// Result returns the entered values. An unparsable port is returned as 0.
func (m SetupModel) Result() (clientID, clientSecret string, port int) {
	port, err := strconv.Atoi(m.inputs[2].Value())
	if err != nil {
		port = 0
	}
	return m.inputs[0].Value(), m.inputs[1].Value(), port
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
