package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/trogers1052/ai-feed-monitor/internal/feed"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
	"github.com/trogers1052/ai-feed-monitor/internal/view"
)

// FeedSource is the read side of the feed client
type FeedSource interface {
	Events() []models.FeedEvent
	State() feed.State
	Attempt() int
}

// Pinger is a dependency that can report its health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	feed     FeedSource
	snapshot models.RiskSnapshot
	redis    Pinger
	kafka    bool
	now      func() time.Time
}

// NewHandler creates a new Handler. The snapshot is the one fetched at
// startup; redis may be nil when the cache is not configured.
func NewHandler(source FeedSource, snapshot models.RiskSnapshot, redis Pinger, kafkaEnabled bool) *Handler {
	return &Handler{
		feed:     source,
		snapshot: snapshot,
		redis:    redis,
		kafka:    kafkaEnabled,
		now:      time.Now,
	}
}

// GetFeed handles GET /api/v1/feed
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	events := h.feed.Events()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit < len(events) {
			events = events[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// GetRiskState handles GET /api/v1/risk-state
func (h *Handler) GetRiskState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, view.Render(h.feed.Events(), h.snapshot, h.feed.State()))
}

// Live handles GET /health/live
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	// Check feed connection
	state := h.feed.State()
	services["feed"] = state.String()
	if state != feed.StateOpen {
		allHealthy = false
		health["reconnect_attempt"] = h.feed.Attempt()
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	// Check Kafka producer
	if h.kafka {
		services["kafka"] = "configured"
	} else {
		services["kafka"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
