package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts a prompt or spinner.
var ErrCancelled = errors.New("cancelled")

// getTTY opens /dev/tty for direct terminal access (bypasses redirections)
func getTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

// spinnerModel is the bubbletea model for the loading spinner
type spinnerModel struct {
	spinner   spinner.Model
	label     string
	cancel    context.CancelFunc
	cancelled bool
	done      bool
	err       error
	dimStyle  lipgloss.Style
}

type workDoneMsg struct {
	err error
}

func newSpinnerModel(label string, cancel context.CancelFunc, tty *os.File) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	r := lipgloss.NewRenderer(tty)
	s.Style = r.NewStyle().Foreground(GetTheme().Spinner)
	return spinnerModel{
		spinner:  s,
		label:    label,
		cancel:   cancel,
		dimStyle: r.NewStyle().Foreground(GetTheme().Muted),
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEscape || msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.spinner.View() + " " + m.label + " " + m.dimStyle.Render("(esc to cancel)")
}

// RunWithSpinner shows a spinner on the terminal while fn runs. Without a
// terminal fn runs directly.
func RunWithSpinner(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tty, ttyErr := getTTY()
	if ttyErr != nil {
		return fn(ctx)
	}
	defer tty.Close()

	p := tea.NewProgram(newSpinnerModel(label, cancel, tty), tea.WithInput(tty), tea.WithOutput(tty))

	go func() {
		p.Send(workDoneMsg{err: fn(ctx)})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	m := finalModel.(spinnerModel)
	if m.cancelled {
		return ErrCancelled
	}
	if !m.done {
		return fmt.Errorf("no result received")
	}
	return m.err
}

// runForm runs form on /dev/tty when available.
func runForm(form *huh.Form) error {
	if tty, err := getTTY(); err == nil {
		defer tty.Close()
		form = form.WithInput(tty).WithOutput(tty)
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return err
	}
	return nil
}

// PromptAPIKey asks for an API key with masked input.
func PromptAPIKey(providerLabel, envVar string) (string, error) {
	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Enter your %s API key", providerLabel)).
				Description(fmt.Sprintf("Stored encrypted on this machine. %s is used when no key is stored.", envVar)).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("API key cannot be empty")
					}
					return nil
				}).
				Value(&key),
		),
	)
	if err := runForm(form); err != nil {
		return "", err
	}
	return key, nil
}

// Confirm asks a yes/no question. The default answer is no.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := runForm(form); err != nil {
		return false, err
	}
	return ok, nil
}

// SelectProvider asks which text-generation provider to use.
func SelectProvider(current string, names []string) (string, error) {
	provider := current
	options := make([]huh.Option[string], 0, len(names))
	for _, n := range names {
		options = append(options, huh.NewOption(n, n))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which provider should the assistant use?").
				Options(options...).
				Value(&provider),
		),
	)
	if err := runForm(form); err != nil {
		return "", err
	}
	return provider, nil
}

// SelectFile lets the user pick one of paths.
func SelectFile(title string, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New("no markdown files found")
	}
	var selected string
	options := make([]huh.Option[string], 0, len(paths))
	for _, p := range paths {
		options = append(options, huh.NewOption(p, p))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Height(min(len(paths)+2, 15)).
				Value(&selected),
		),
	)
	if err := runForm(form); err != nil {
		return "", err
	}
	return selected, nil
}

// ShowError displays an error message
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// ShowResult prints a styled status line to stderr.
func ShowResult(success bool, msg string) {
	fmt.Fprintln(os.Stderr, DefaultStyles().FormatResult(success, msg))
}
