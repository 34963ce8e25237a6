package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/ai-feed-monitor/internal/logging"
	"github.com/trogers1052/ai-feed-monitor/internal/metrics"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// RiskStatePath is the snapshot endpoint on the upstream engine
const RiskStatePath = "/api/risk-state"

// DefaultSnapshot is served whenever the upstream snapshot cannot be read
func DefaultSnapshot() models.RiskSnapshot {
	return models.RiskSnapshot{
		DailyPnlR:        decimal.Zero,
		KillswitchActive: false,
		ActiveTrades:     []models.ActiveTrade{},
	}
}

// Fetcher reads the one-time risk snapshot from the upstream engine
type Fetcher struct {
	client  *resty.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher for the engine at baseURL
func NewFetcher(baseURL string, timeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Fetcher {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Fetcher{
		client:  client,
		metrics: m,
		logger:  logging.Component(logger, "risk"),
	}
}

// Fetch returns the current risk snapshot. It never fails: any transport,
// status or decoding problem is logged and DefaultSnapshot is returned.
func (f *Fetcher) Fetch(ctx context.Context) models.RiskSnapshot {
	snapshot, err := f.fetch(ctx)
	if err != nil {
		f.metrics.SnapshotFailed()
		f.logger.Warn().Err(err).Msg("Failed to fetch risk state, using default snapshot")
		return DefaultSnapshot()
	}

	f.logger.Info().
		Str("daily_pnl_r", snapshot.DailyPnlR.String()).
		Bool("killswitch_active", snapshot.KillswitchActive).
		Int("active_trades", len(snapshot.ActiveTrades)).
		Msg("Risk state loaded")
	return snapshot
}

func (f *Fetcher) fetch(ctx context.Context) (models.RiskSnapshot, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(RiskStatePath)
	if err != nil {
		return models.RiskSnapshot{}, fmt.Errorf("request risk state: %w", err)
	}
	if resp.IsError() {
		return models.RiskSnapshot{}, fmt.Errorf("risk state returned status %d", resp.StatusCode())
	}

	return decodeSnapshot(resp.Body())
}

func decodeSnapshot(body []byte) (models.RiskSnapshot, error) {
	var raw struct {
		DailyPnlR        *decimal.Decimal     `json:"daily_pnl_r"`
		MaxDrawdownLimit decimal.NullDecimal  `json:"max_drawdown_limit"`
		KillswitchActive *bool                `json:"killswitch_active"`
		ActiveTrades     []models.ActiveTrade `json:"active_trades"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.RiskSnapshot{}, fmt.Errorf("failed to unmarshal risk state: %w", err)
	}
	if raw.DailyPnlR == nil || raw.KillswitchActive == nil {
		return models.RiskSnapshot{}, fmt.Errorf("risk state missing daily_pnl_r or killswitch_active")
	}

	snapshot := models.RiskSnapshot{
		DailyPnlR:        *raw.DailyPnlR,
		MaxDrawdownLimit: raw.MaxDrawdownLimit,
		KillswitchActive: *raw.KillswitchActive,
		ActiveTrades:     raw.ActiveTrades,
	}
	if snapshot.ActiveTrades == nil {
		snapshot.ActiveTrades = []models.ActiveTrade{}
	}
	return snapshot, nil
}
