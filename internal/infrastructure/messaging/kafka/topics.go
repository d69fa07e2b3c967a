// Package kafka publishes domain events to Kafka topics.
package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Topic names for the domain events this service emits.
const (
	// TopicStageChanged carries StageChangedEvent payloads.
	TopicStageChanged = "opportunity.stage_changed"

	// TopicAlertDismissed carries AlertDismissedEvent payloads.
	TopicAlertDismissed = "alert.dismissed"
)

// EventEnvelope wraps every published payload with identity and timing
// metadata so consumers can deduplicate and order.
type EventEnvelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewEnvelope builds an envelope with a fresh event id.
func NewEnvelope(eventType string, occurredAt time.Time, payload interface{}) EventEnvelope {
	return EventEnvelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}

// StageChangedEvent is published when an opportunity moves between pipeline
// stages.
type StageChangedEvent struct {
	OpportunityID string    `json:"opportunity_id"`
	FromStage     string    `json:"from_stage"`
	ToStage       string    `json:"to_stage"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AlertDismissedEvent is published when a new dismissal is recorded.  Re-runs
// of an existing dismissal do not emit an event.
type AlertDismissedEvent struct {
	OpportunityID string    `json:"opportunity_id"`
	RuleID        string    `json:"rule_id"`
	DismissedBy   string    `json:"dismissed_by,omitempty"`
	DismissedAt   time.Time `json:"dismissed_at"`
}
