package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskSnapshot_MarshalsDecimalsAsNumbers(t *testing.T) {
	snapshot := RiskSnapshot{
		DailyPnlR:        decimal.RequireFromString("-2.5"),
		MaxDrawdownLimit: decimal.NewNullDecimal(decimal.NewFromInt(-3)),
		ActiveTrades: []ActiveTrade{
			{ID: 7, Symbol: "BTCUSDT", Action: ActionLong, EntryPrice: decimal.NewNullDecimal(decimal.RequireFromString("43120.5"))},
		},
	}

	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, `"daily_pnl_r":-2.5`)
	assert.Contains(t, body, `"max_drawdown_limit":-3`)
	assert.Contains(t, body, `"entry_price":43120.5`)
	assert.Contains(t, body, `"stop_loss":null`)
}

func TestRiskSnapshot_RoundTrip(t *testing.T) {
	raw := `{"daily_pnl_r":1.75,"max_drawdown_limit":null,"killswitch_active":true,"active_trades":[]}`

	var snapshot RiskSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
	assert.True(t, snapshot.DailyPnlR.Equal(decimal.RequireFromString("1.75")))
	assert.False(t, snapshot.MaxDrawdownLimit.Valid)

	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(payload))
}
