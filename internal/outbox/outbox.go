// Package outbox records side effects (emails, notifications, broker
// messages) in the same transaction as the state change that caused them and
// delivers them later with retries.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"evea/internal/domain"
)

const (
	TopicVerificationRequested = "user.verification_requested"
	TopicEmailVerified         = "user.email_verified"
	TopicVendorApproved        = "vendor.approved"
	TopicVendorRejected        = "vendor.rejected"
	TopicVendorSuspended       = "vendor.suspended"
	TopicVendorReinstated      = "vendor.reinstated"
	TopicCredentialsReissued   = "vendor.credentials_reissued"
	TopicOrderPlaced           = "order.placed"
	TopicOrderStatusChanged    = "order.status_changed"
	TopicReviewCreated         = "review.created"
)

type options struct {
	sensitive bool
	delay     time.Duration
}

type Option func(*options)

// Sensitive marks the payload for scrubbing once delivered (temporary
// passwords, raw verification tokens).
func Sensitive() Option { return func(o *options) { o.sensitive = true } }

func Delay(d time.Duration) Option { return func(o *options) { o.delay = d } }

// Enqueue writes an event using tx, so it commits or rolls back together
// with the caller's own writes.
func Enqueue(tx *gorm.DB, topic string, payload any, opts ...Option) (*domain.OutboxEvent, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("outbox: marshal %s: %w", topic, err)
	}

	now := time.Now().UTC()
	ev := &domain.OutboxEvent{
		ID:            ulid.Make().String(),
		Topic:         topic,
		Payload:       body,
		Status:        domain.OutboxPending,
		NextAttemptAt: now.Add(o.delay),
		Sensitive:     o.sensitive,
		CreatedAt:     now,
	}
	if err := tx.Create(ev).Error; err != nil {
		return nil, fmt.Errorf("outbox: enqueue %s: %w", topic, err)
	}
	return ev, nil
}

// Decode unmarshals an event payload into T.
func Decode[T any](ev *domain.OutboxEvent) (T, error) {
	var v T
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("outbox: decode %s %s: %w", ev.Topic, ev.ID, err)
	}
	return v, nil
}
