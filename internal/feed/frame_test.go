package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

func TestParseFrame_LegacySchema(t *testing.T) {
	raw := `{"timestamp":"2025-01-01T10:00:00Z","action":"WAIT","confidence":40,"reasoning":"No displacement yet"}`

	event, err := ParseFrame([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01T10:00:00Z", event.Timestamp)
	assert.Equal(t, models.ActionWait, event.Action)
	assert.Equal(t, 40.0, event.Confidence)
	assert.Empty(t, event.Symbol)
	assert.Empty(t, event.Status)
	assert.Nil(t, event.Price)
	assert.Nil(t, event.Size)
	assert.Nil(t, event.PnlR)
}

func TestParseFrame_CurrentSchema(t *testing.T) {
	raw := `{"timestamp":"2025-01-01T10:05:00Z","symbol":"BTCUSDT","action":"LONG","confidence":82,
		"reasoning":"Sweep of Asia low into bullish FVG","status":"REJECTED","price":43120.5,"size":0.01,"pnl_r":null}`

	event, err := ParseFrame([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", event.Symbol)
	// Action and status are independent
	assert.Equal(t, models.ActionLong, event.Action)
	assert.Equal(t, models.StatusRejected, event.Status)
	require.NotNil(t, event.Price)
	assert.Equal(t, 43120.5, *event.Price)
	require.NotNil(t, event.Size)
	assert.Equal(t, 0.01, *event.Size)
	assert.Nil(t, event.PnlR)
}

func TestParseFrame_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":    "not json",
		"empty":       "",
		"array":       `[{"action":"LONG"}]`,
		"null":        "null",
		"scalar":      `"LONG"`,
		"truncated":   `{"action":"LONG"`,
		"wrong type":  `{"confidence":"high"}`,
		"only spaces": "   ",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			event, err := ParseFrame([]byte(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFrame)
			assert.Equal(t, models.FeedEvent{}, event)
		})
	}
}

func TestParseFrame_UnknownActionKept(t *testing.T) {
	event, err := ParseFrame([]byte(`{"action":"HEDGE","confidence":10,"reasoning":"?"}`))
	require.NoError(t, err)
	assert.Equal(t, models.Action("HEDGE"), event.Action)
}
