package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

const apiTimeout = 15 * time.Second

// API is the subset of the kiosk client the screens use.
type API interface {
	Get(ctx context.Context, id uuid.UUID) (*wire.Transaction, error)
	Queue(ctx context.Context) ([]*wire.Transaction, error)
	Verify(ctx context.Context, id uuid.UUID) (*wire.VerifyResponse, error)
	IssueLabel(ctx context.Context, id uuid.UUID) (*wire.LabelResponse, error)
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// ScanMsg hands a transaction id from another screen to the scan screen.
type ScanMsg struct {
	ID uuid.UUID
}

func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func FormatDate(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func APICtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func summary(tx *wire.Transaction) string {
	if tx == nil {
		return ""
	}

	row := func(k, v string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", k)) + " " + v
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		row("ID", tx.ID.String()),
		row("From", fmt.Sprintf("%s, %s %s", tx.FromAddress.City, tx.FromAddress.State, tx.FromAddress.ZIPCode)),
		row("To", fmt.Sprintf("%s, %s %s", tx.ToAddress.City, tx.ToAddress.State, tx.ToAddress.ZIPCode)),
		row("Service", tx.SelectedService),
		row("Weight", fmt.Sprintf("%.1f oz", tx.PackageDetails.Weight)),
		row("Price", FormatPrice(tx.Price)),
		row("Payment", string(tx.PaymentStatus)),
		row("State", string(tx.State)),
	)
}
