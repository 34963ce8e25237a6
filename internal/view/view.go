// Package view maps feed history and the risk snapshot to the view models
// rendered by the dashboard. Everything here is a pure function of its input.
package view

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/ai-feed-monitor/internal/feed"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// EmptyFeedPlaceholder is shown while no event has arrived
const EmptyFeedPlaceholder = "Awaiting market structure shift..."

// Tone is a presentation hint for a value
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneWait     Tone = "wait"
	ToneActive   Tone = "active"
)

// StatsPanel is the PnL / kill-switch header
type StatsPanel struct {
	DailyPnl     string `json:"daily_pnl"`
	DailyPnlTone Tone   `json:"daily_pnl_tone"`
	RiskGuard    string `json:"risk_guard"`
	RiskTone     Tone   `json:"risk_tone"`
}

// TerminalRow is one entry of the live execution feed
type TerminalRow struct {
	Timestamp string        `json:"timestamp"`
	Symbol    string        `json:"symbol,omitempty"`
	Badge     string        `json:"badge"`
	BadgeTone Tone          `json:"badge_tone"`
	Reasoning string        `json:"reasoning"`
	Status    models.Status `json:"status,omitempty"`
}

// Terminal is the live execution feed panel
type Terminal struct {
	Rows        []TerminalRow `json:"rows"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// Dashboard is the full page model
type Dashboard struct {
	Stats      StatsPanel `json:"stats"`
	Terminal   Terminal   `json:"terminal"`
	Connection feed.State `json:"connection"`
}

// Stats renders the header panel. PnL is green at zero and above; only
// strictly positive values get a plus sign.
func Stats(snapshot models.RiskSnapshot) StatsPanel {
	panel := StatsPanel{
		DailyPnl:     formatR(snapshot.DailyPnlR),
		DailyPnlTone: TonePositive,
		RiskGuard:    "ARMED",
		RiskTone:     TonePositive,
	}
	if snapshot.DailyPnlR.IsNegative() {
		panel.DailyPnlTone = ToneNegative
	}
	if snapshot.KillswitchActive {
		panel.RiskGuard = "HALTED"
		panel.RiskTone = ToneNegative
	}
	return panel
}

// RenderTerminal renders events in the order given (newest first)
func RenderTerminal(events []models.FeedEvent) Terminal {
	if len(events) == 0 {
		return Terminal{Rows: []TerminalRow{}, Placeholder: EmptyFeedPlaceholder}
	}

	rows := make([]TerminalRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, Row(e))
	}
	return Terminal{Rows: rows}
}

// Row renders a single feed event
func Row(e models.FeedEvent) TerminalRow {
	tone := ToneActive
	if e.IsWait() {
		tone = ToneWait
	}
	return TerminalRow{
		Timestamp: e.Timestamp,
		Symbol:    e.Symbol,
		Badge:     string(e.Action) + " (" + strconv.FormatFloat(e.Confidence, 'f', -1, 64) + "%)",
		BadgeTone: tone,
		Reasoning: e.Reasoning,
		Status:    e.Status,
	}
}

// Render builds the whole dashboard
func Render(events []models.FeedEvent, snapshot models.RiskSnapshot, state feed.State) Dashboard {
	return Dashboard{
		Stats:      Stats(snapshot),
		Terminal:   RenderTerminal(events),
		Connection: state,
	}
}

func formatR(pnl decimal.Decimal) string {
	sign := ""
	if pnl.IsPositive() {
		sign = "+"
	}
	return sign + pnl.String() + " R"
}
