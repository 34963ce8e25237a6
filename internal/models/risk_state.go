package models

import (
	"github.com/shopspring/decimal"
)

// Decimals go on the wire as JSON numbers, matching the upstream engine
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RiskSnapshot is the point-in-time risk state served by the upstream engine
// at GET /api/risk-state
type RiskSnapshot struct {
	DailyPnlR        decimal.Decimal     `json:"daily_pnl_r"`
	MaxDrawdownLimit decimal.NullDecimal `json:"max_drawdown_limit"`
	KillswitchActive bool                `json:"killswitch_active"`
	ActiveTrades     []ActiveTrade       `json:"active_trades"`
}

// ActiveTrade represents an open trade reported in the risk snapshot
type ActiveTrade struct {
	ID         int                 `json:"id"`
	Symbol     string              `json:"symbol"`
	Action     Action              `json:"action"`
	EntryPrice decimal.NullDecimal `json:"entry_price"`
	StopLoss   decimal.NullDecimal `json:"stop_loss"`
	TakeProfit decimal.NullDecimal `json:"take_profit"`
	CreatedAt  *string             `json:"created_at,omitempty"`
}
