package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Change event types published after successful mutations.
const (
	EventBillCreated     = "bill.created"
	EventBillUpdated     = "bill.updated"
	EventBillDeleted     = "bill.deleted"
	EventConsumerCreated = "consumer.created"
	EventConsumerUpdated = "consumer.updated"
	EventConsumerDeleted = "consumer.deleted"
)

// ChangeEvent tells downstream consumers that an entity changed. It carries
// identifiers only; readers fetch current state from the API.
type ChangeEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	ConsumerID string    `json:"consumerId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(eventType, id, consumerID string) *ChangeEvent {
	return &ChangeEvent{
		Type:       eventType,
		ID:         id,
		ConsumerID: consumerID,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeEventFromJSON decodes a change event.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExportRequest asks the worker to build a bill report. Dates are
// YYYY-MM-DD; empty fields mean no restriction.
type ExportRequest struct {
	ID           string    `json:"id"`
	ConsumerName string    `json:"consumerName,omitempty"`
	StartDate    string    `json:"startDate,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// NewExportRequest assigns a job id and timestamp.
func NewExportRequest(consumerName, startDate, endDate string) *ExportRequest {
	return &ExportRequest{
		ID:           uuid.NewString(),
		ConsumerName: consumerName,
		StartDate:    startDate,
		EndDate:      endDate,
		RequestedAt:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestFromJSON decodes an export request. The id names the report
// file, so anything but a UUID is rejected.
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errMissingID
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", msg.ID, err)
	}
	return &msg, nil
}
