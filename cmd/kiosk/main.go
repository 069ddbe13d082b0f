package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/scango/cmd/kiosk/internal/view"
	"github.com/MrJamesThe3rd/scango/internal/auth"
	"github.com/MrJamesThe3rd/scango/internal/client"
	"github.com/MrJamesThe3rd/scango/internal/config"
)

type model struct {
	api view.API

	currentView View

	scanView  view.ScanModel
	queueView view.QueueModel
	labelDir  string
	kioskID   string
}

type View int

const (
	ViewMenu  View = 0
	ViewScan  View = 1
	ViewQueue View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	signer := auth.NewSigner(cfg.Kiosk.JWTSecret, cfg.Kiosk.TokenTTL)
	api := client.New(cfg.Kiosk.APIURL, signer, cfg.Kiosk.ID)

	return model{
		api:         api,
		currentView: ViewMenu,
		scanView:    view.NewScanModel(api, cfg.Kiosk.LabelDir),
		queueView:   view.NewQueueModel(api),
		labelDir:    cfg.Kiosk.LabelDir,
		kioskID:     cfg.Kiosk.ID,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewScan
				m.scanView = view.NewScanModel(m.api, m.labelDir)

				return m, m.scanView.Init()
			case "2":
				m.currentView = ViewQueue
				m.queueView = view.NewQueueModel(m.api)

				return m, m.queueView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.ScanMsg:
		m.currentView = ViewScan
		m.scanView, cmd = view.NewScanModel(m.api, m.labelDir).Start(msg.ID)

		return m, cmd
	}

	switch m.currentView {
	case ViewScan:
		var newModel tea.Model
		newModel, cmd = m.scanView.Update(msg)
		m.scanView = newModel.(view.ScanModel)
	case ViewQueue:
		var newModel tea.Model
		newModel, cmd = m.queueView.Update(msg)
		m.queueView = newModel.(view.QueueModel)
	}

	return m, cmd
}

func (m model) View() string {
	var (
		title string
		body  string
		help  string
	)

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Scan & Go Kiosk (" + m.kioskID + ")\n\n" +
				"1. Scan Customer Code\n" +
				"2. Awaiting Label Queue\n\n" +
				"q. Quit",
		)
	case ViewScan:
		title, body, help = m.scanView.Title(), m.scanView.View(), m.scanView.ShortHelp()
	case ViewQueue:
		title, body, help = m.queueView.Title(), m.queueView.View(), m.queueView.ShortHelp()
	default:
		return "Unknown View"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(title),
		body,
		lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(help),
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run kiosk", "error", err)
		os.Exit(1)
	}
}
