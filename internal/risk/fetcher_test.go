package risk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/ai-feed-monitor/internal/metrics"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := metrics.New(prometheus.NewRegistry())
	return NewFetcher(srv.URL, time.Second, m, zerolog.Nop()), m
}

func assertDefault(t *testing.T, snapshot models.RiskSnapshot) {
	t.Helper()
	assert.True(t, snapshot.DailyPnlR.IsZero())
	assert.False(t, snapshot.KillswitchActive)
	require.NotNil(t, snapshot.ActiveTrades)
	assert.Empty(t, snapshot.ActiveTrades)
	assert.Equal(t, DefaultSnapshot(), snapshot)
}

func TestFetch_Success(t *testing.T) {
	f, m := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, RiskStatePath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"daily_pnl_r": -1.5,
			"max_drawdown_limit": -3,
			"killswitch_active": true,
			"active_trades": [
				{"id": 7, "symbol": "BTCUSDT", "action": "LONG", "entry_price": 43000.5,
				 "stop_loss": 42800, "take_profit": null, "created_at": "2025-01-01T10:00:00"}
			]
		}`))
	})

	snapshot := f.Fetch(context.Background())

	assert.True(t, snapshot.DailyPnlR.Equal(decimal.RequireFromString("-1.5")))
	require.True(t, snapshot.MaxDrawdownLimit.Valid)
	assert.True(t, snapshot.MaxDrawdownLimit.Decimal.Equal(decimal.NewFromInt(-3)))
	assert.True(t, snapshot.KillswitchActive)
	require.Len(t, snapshot.ActiveTrades, 1)

	trade := snapshot.ActiveTrades[0]
	assert.Equal(t, 7, trade.ID)
	assert.Equal(t, models.ActionLong, trade.Action)
	assert.True(t, trade.EntryPrice.Valid)
	assert.False(t, trade.TakeProfit.Valid)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SnapshotFailures))
}

func TestFetch_NetworkErrorReturnsDefault(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	m := metrics.New(prometheus.NewRegistry())
	f := NewFetcher(baseURL, time.Second, m, zerolog.Nop())

	assertDefault(t, f.Fetch(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFailures))
}

func TestFetch_ErrorStatusReturnsDefault(t *testing.T) {
	f, m := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"daily_pnl_r": 4, "killswitch_active": true, "active_trades": []}`))
	})

	assertDefault(t, f.Fetch(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFailures))
}

func TestFetch_MalformedBodyReturnsDefault(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	assertDefault(t, f.Fetch(context.Background()))
}

func TestFetch_MissingFieldsReturnsDefault(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"active_trades": []}`))
	})

	assertDefault(t, f.Fetch(context.Background()))
}

func TestFetch_NullTradesBecomeEmpty(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily_pnl_r": 0.75, "killswitch_active": false, "active_trades": null}`))
	})

	snapshot := f.Fetch(context.Background())

	assert.True(t, snapshot.DailyPnlR.Equal(decimal.RequireFromString("0.75")))
	require.NotNil(t, snapshot.ActiveTrades)
	assert.Empty(t, snapshot.ActiveTrades)
	assert.False(t, snapshot.MaxDrawdownLimit.Valid)
}

func TestFetch_CancelledContextReturnsDefault(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily_pnl_r": 1, "killswitch_active": false, "active_trades": []}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assertDefault(t, f.Fetch(ctx))
}
