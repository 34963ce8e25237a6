package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// ErrMalformedFrame is returned for frames that are not a JSON feed event
var ErrMalformedFrame = errors.New("malformed feed frame")

// ParseFrame decodes one feed frame. Fields missing from older producers
// are left empty rather than rejected.
func ParseFrame(raw []byte) (models.FeedEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.FeedEvent{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedFrame)
	}

	var event models.FeedEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return models.FeedEvent{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	return event, nil
}
