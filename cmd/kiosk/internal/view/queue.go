package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

type QueueModel struct {
	CommonModel
	api API

	table   table.Model
	txs     []*wire.Transaction
	loading bool
	err     error
}

func NewQueueModel(api API) QueueModel {
	columns := []table.Column{
		{Title: "Paid At", Width: 17},
		{Title: "Service", Width: 22},
		{Title: "Destination", Width: 24},
		{Title: "Weight", Width: 8},
		{Title: "Price", Width: 9},
		{Title: "ID", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return QueueModel{
		api:     api,
		table:   t,
		loading: true,
	}
}

func (m QueueModel) Title() string { return "Awaiting Label" }

func (m QueueModel) ShortHelp() string {
	return "Esc: back | Enter: process | r: refresh"
}

func (m QueueModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m QueueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.txs) {
				return m, nil
			}

			id := m.txs[idx].ID

			return m, func() tea.Msg { return ScanMsg{ID: id} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m QueueModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading queue...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("%s paid transaction(s) awaiting a label", accentStyle.Render(fmt.Sprint(len(m.txs))))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

func (m *QueueModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.UpdatedAt),
			tx.SelectedService,
			fmt.Sprintf("%s, %s %s", tx.ToAddress.City, tx.ToAddress.State, tx.ToAddress.ZIPCode),
			fmt.Sprintf("%.1f oz", tx.PackageDetails.Weight),
			FormatPrice(tx.Price),
			tx.ID.String(),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadQueueMsg struct {
	txs []*wire.Transaction
	err error
}

func (m QueueModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		txs, err := m.api.Queue(ctx)

		return loadQueueMsg{txs: txs, err: err}
	}
}
