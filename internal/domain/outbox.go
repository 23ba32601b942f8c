package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB is a type for handle JSONB field that GORM can automatically marshal/unmarshal JSONB fields.
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// OutboxEvent is a side effect recorded in the same database transaction as the state
// change that requires it, processed after commit and retried until it succeeds
type OutboxEvent struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	Type        string     `json:"type" gorm:"type:varchar(64);not null"`
	Data        JSONB      `json:"data" gorm:"type:jsonb"`
	Status      string     `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count" gorm:"default:0"`
}

// TableName specifies the table name for OutboxEvent
func (o OutboxEvent) TableName() string {
	return "outbox_events"
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	Save(ctx context.Context, event *OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, eventID string) error
	MarkAsFailed(ctx context.Context, eventID string, errMsg string) error
	IncrementRetryCount(ctx context.Context, eventID string, errMsg string) error
}

// OutboxProcessor defines the interface for processing outbox events
type OutboxProcessor interface {
	ProcessEvents(ctx context.Context) error
	ProcessEvent(ctx context.Context, event *OutboxEvent) error
	// Dispatch processes an event asynchronously right after the commit that saved it.
	Dispatch(event *OutboxEvent)
	StartBackgroundProcessing()
	StopBackgroundProcessing()
}

// EventTypeReferralEvaluation asks the referral engine to evaluate the purchasing user.
// Data: {"user_id": ..., "external_id": ...}
const EventTypeReferralEvaluation = "REFERRAL_EVALUATION"

// Event statuses
const (
	EventStatusPending   = "PENDING"
	EventStatusProcessed = "PROCESSED"
	EventStatusFailed    = "FAILED"
)
