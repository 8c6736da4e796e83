package domain

import "time"

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEvent is a side effect recorded in the same transaction as the state
// change that caused it and delivered later by the dispatcher.
type OutboxEvent struct {
	ID            string       `json:"id" gorm:"primaryKey;size:26"`
	Topic         string       `json:"topic" gorm:"size:64;index;not null"`
	Payload       []byte       `json:"payload" gorm:"not null"`
	Status        OutboxStatus `json:"status" gorm:"size:20;not null;index:idx_outbox_due,priority:1"`
	Attempts      int          `json:"attempts" gorm:"not null;default:0"`
	NextAttemptAt time.Time    `json:"nextAttemptAt" gorm:"not null;index:idx_outbox_due,priority:2"`
	LastError     string       `json:"lastError,omitempty" gorm:"type:text"`
	Sensitive     bool         `json:"sensitive" gorm:"not null;default:false"`
	CreatedAt     time.Time    `json:"createdAt"`
	SentAt        *time.Time   `json:"sentAt,omitempty"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
