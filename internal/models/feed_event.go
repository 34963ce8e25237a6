package models

// Action is the direction an AI decision points to
type Action string

const (
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
	ActionWait  Action = "WAIT"
)

// Status is what happened to a decision downstream of the decision engine.
// It is independent of Action: a LONG intent can still be REJECTED.
type Status string

const (
	StatusWait       Status = "WAIT"
	StatusIgnored    Status = "IGNORED"
	StatusRejected   Status = "REJECTED"
	StatusExecuted   Status = "EXECUTED"
	StatusFailed     Status = "FAILED"
	StatusKillswitch Status = "KILLSWITCH"
)

// FeedEvent represents one decision/execution record pushed on the AI feed.
//
// The feed schema has grown over time. Early frames only carry timestamp,
// action, confidence and reasoning; the remaining fields are optional and
// left empty/nil when missing.
type FeedEvent struct {
	Timestamp  string   `json:"timestamp"`
	Symbol     string   `json:"symbol,omitempty"`
	Action     Action   `json:"action"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Status     Status   `json:"status,omitempty"`
	Price      *float64 `json:"price"`
	Size       *float64 `json:"size"`
	PnlR       *float64 `json:"pnl_r"`
}

// IsWait reports whether the event is a WAIT decision
func (e FeedEvent) IsWait() bool {
	return e.Action == ActionWait
}
