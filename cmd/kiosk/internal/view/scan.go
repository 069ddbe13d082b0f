package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/client"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
	"github.com/MrJamesThe3rd/scango/internal/redemption"
)

type scanState int

const (
	scanStateInput scanState = iota
	scanStateVerifying
	scanStateConfirm
	scanStateIssuing
	scanStateResult
)

type ScanModel struct {
	CommonModel
	api      API
	labelDir string

	state     scanState
	input     textinput.Model
	spinner   spinner.Model
	form      *huh.Form
	confirmed *bool

	id     uuid.UUID
	verify *wire.VerifyResponse
	label  *wire.LabelResponse
	saved  string
	status string
	err    error
}

func NewScanModel(api API, labelDir string) ScanModel {
	ti := textinput.New()
	ti.Placeholder = "Scan QR code or type transaction id"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ScanModel{
		api:       api,
		labelDir:  labelDir,
		state:     scanStateInput,
		input:     ti,
		spinner:   s,
		confirmed: new(bool),
	}
}

func (m ScanModel) Title() string { return "Scan & Go" }

func (m ScanModel) ShortHelp() string {
	switch m.state {
	case scanStateInput:
		return "Enter: verify | Esc: back"
	case scanStateResult:
		return "Enter: next customer | Esc: back"
	case scanStateConfirm:
		return "Esc: cancel"
	}

	return ""
}

func (m ScanModel) Init() tea.Cmd {
	return textinput.Blink
}

// Start jumps straight to verification of id, skipping the scan prompt.
func (m ScanModel) Start(id uuid.UUID) (ScanModel, tea.Cmd) {
	m.id = id
	m.state = scanStateVerifying
	m.err = nil
	m.status = ""

	return m, tea.Batch(m.spinner.Tick, m.verifyCmd(id))
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case verifyResultMsg:
		return m.handleVerify(msg)
	case issueResultMsg:
		return m.handleIssue(msg)
	case spinner.TickMsg:
		if m.state != scanStateVerifying && m.state != scanStateIssuing {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case scanStateInput:
		return m.updateInput(msg)
	case scanStateConfirm:
		return m.updateConfirm(msg)
	case scanStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ScanModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, nil
			}

			id, err := redemption.ParseScan(raw)
			if err != nil {
				m.status = "Unrecognised code, scan again"
				m.input.SetValue("")

				return m, nil
			}

			return m.Start(id)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m ScanModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.reset(), textinput.Blink
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirmed {
		m = m.reset()
		m.status = "Label not issued"

		return m, textinput.Blink
	}

	m.state = scanStateIssuing

	return m, tea.Batch(m.spinner.Tick, m.issueCmd(m.id))
}

func (m ScanModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m.reset(), Back
		case tea.KeyEnter:
			return m.reset(), textinput.Blink
		}
	}

	return m, nil
}

func (m ScanModel) handleVerify(msg verifyResultMsg) (tea.Model, tea.Cmd) {
	m.verify = msg.resp

	switch {
	case msg.err != nil:
		m.err = msg.err
		m.state = scanStateResult
	case msg.resp.ReadyForLabel:
		*m.confirmed = false
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Print shipping label?").
					Affirmative("Print").
					Negative("Cancel").
					Value(m.confirmed),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = scanStateConfirm

		return m, m.form.Init()
	default:
		m.state = scanStateResult
	}

	return m, nil
}

func (m ScanModel) handleIssue(msg issueResultMsg) (tea.Model, tea.Cmd) {
	m.state = scanStateResult
	m.label = msg.resp
	m.saved = msg.path
	m.err = msg.err

	if msg.saveErr != nil {
		m.status = fmt.Sprintf("Label PDF not saved: %v", msg.saveErr)
	}

	return m, nil
}

func (m ScanModel) reset() ScanModel {
	m.state = scanStateInput
	m.id = uuid.Nil
	m.verify = nil
	m.label = nil
	m.saved = ""
	m.err = nil
	m.status = ""
	m.form = nil
	m.input.SetValue("")
	m.input.Focus()

	return m
}

func (m ScanModel) View() string {
	var body string

	switch m.state {
	case scanStateInput:
		body = lipgloss.JoinVertical(lipgloss.Left, "Scan customer QR code", "", m.input.View())
		if m.status != "" {
			body += "\n\n" + errorStyle.Render(m.status)
		}
	case scanStateVerifying:
		body = fmt.Sprintf("%s Verifying %s...", m.spinner.View(), m.id)
	case scanStateConfirm:
		body = lipgloss.JoinVertical(lipgloss.Left, summary(m.verify.Transaction), "", m.form.View())
	case scanStateIssuing:
		body = fmt.Sprintf("%s Creating label...", m.spinner.View())
	case scanStateResult:
		body = m.viewResult()
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

func (m ScanModel) viewResult() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.label != nil && m.label.Label != nil {
		lines := []string{
			successStyle.Render("Label issued"),
			"",
			"Tracking number: " + accentStyle.Render(m.label.Label.TrackingNumber),
		}
		if m.saved != "" {
			lines = append(lines, "Saved to: "+m.saved)
		}

		if m.status != "" {
			lines = append(lines, errorStyle.Render(m.status))
		}

		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if m.verify == nil {
		return ""
	}

	if m.verify.Valid && !m.verify.ReadyForLabel {
		return lipgloss.JoinVertical(lipgloss.Left,
			accentStyle.Render("Label already issued"),
			"",
			summary(m.verify.Transaction),
		)
	}

	reason := m.verify.Error
	if reason == "" {
		reason = "transaction cannot be processed"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("Cannot issue label: "+reason),
		"",
		summary(m.verify.Transaction),
	)
}

// Messages

type verifyResultMsg struct {
	resp *wire.VerifyResponse
	err  error
}

func (m ScanModel) verifyCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		resp, err := m.api.Verify(ctx, id)

		return verifyResultMsg{resp: resp, err: err}
	}
}

type issueResultMsg struct {
	resp    *wire.LabelResponse
	path    string
	saveErr error
	err     error
}

func (m ScanModel) issueCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		resp, err := m.api.IssueLabel(ctx, id)
		if err != nil {
			return issueResultMsg{err: err}
		}

		path, err := client.SaveLabel(resp.Label, m.labelDir)

		return issueResultMsg{resp: resp, path: path, saveErr: err}
	}
}
