package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/pkg/metrics"
)

const (
	DefaultBatchSize   = 50
	DefaultMaxAttempts = 8
	DefaultBaseDelay   = 5 * time.Second
	DefaultMaxDelay    = 15 * time.Minute
	// claimLease keeps a claimed event invisible to other dispatchers while
	// its handler runs.
	claimLease = 2 * time.Minute
)

type Handler func(ctx context.Context, ev *domain.OutboxEvent) error

type Config struct {
	BatchSize   int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type Dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	now      func() time.Time
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewDispatcher(db *gorm.DB, log *zap.Logger, cfg Config) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		db:       db,
		log:      log,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		handlers: make(map[string]Handler),
	}
}

func (d *Dispatcher) Handle(topic string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topic] = h
}

func (d *Dispatcher) handler(topic string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[topic]
	return h, ok
}

// Backoff returns the wait before retry number attempt (1-based): base,
// doubled per attempt, capped at max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// RunOnce delivers up to BatchSize due events and returns how many were
// processed (successfully or not).
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.now()

	var due []domain.OutboxEvent
	err := d.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.OutboxPending, now).
		Order("created_at ASC").
		Order("id ASC").
		Limit(d.cfg.BatchSize).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("outbox: load due events: %w", err)
	}

	processed := 0
	for i := range due {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		ev := &due[i]
		claimed, err := d.claim(ctx, ev, now)
		if err != nil {
			return processed, err
		}
		if !claimed {
			continue
		}
		d.deliver(ctx, ev)
		processed++
	}
	return processed, nil
}

// claim pushes next_attempt_at forward by the lease. An event another
// dispatcher claimed first is no longer due and is skipped.
func (d *Dispatcher) claim(ctx context.Context, ev *domain.OutboxEvent, now time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&domain.OutboxEvent{}).
		Where("id = ? AND status = ? AND next_attempt_at <= ?", ev.ID, domain.OutboxPending, now).
		Update("next_attempt_at", now.Add(claimLease))
	if res.Error != nil {
		return false, fmt.Errorf("outbox: claim %s: %w", ev.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (d *Dispatcher) deliver(ctx context.Context, ev *domain.OutboxEvent) {
	log := d.log.With(zap.String("event_id", ev.ID), zap.String("topic", ev.Topic))

	h, ok := d.handler(ev.Topic)
	var herr error
	if !ok {
		herr = fmt.Errorf("no handler registered for topic %q", ev.Topic)
	} else {
		herr = safeCall(ctx, h, ev)
	}

	if herr == nil {
		fields := map[string]any{
			"status":     domain.OutboxSent,
			"attempts":   ev.Attempts + 1,
			"sent_at":    d.now(),
			"last_error": "",
		}
		if ev.Sensitive {
			fields["payload"] = []byte("{}")
		}
		if err := d.db.WithContext(ctx).Model(&domain.OutboxEvent{}).Where("id = ?", ev.ID).Updates(fields).Error; err != nil {
			log.Error("failed to mark outbox event sent", zap.Error(err))
			return
		}
		metrics.OutboxEvents.WithLabelValues(ev.Topic, "sent").Inc()
		log.Debug("outbox event delivered")
		return
	}

	attempts := ev.Attempts + 1
	fields := map[string]any{
		"attempts":   attempts,
		"last_error": herr.Error(),
	}
	result := "retry"
	if attempts >= d.cfg.MaxAttempts {
		fields["status"] = domain.OutboxFailed
		if ev.Sensitive {
			fields["payload"] = []byte("{}")
		}
		result = "failed"
	} else {
		fields["next_attempt_at"] = d.now().Add(Backoff(attempts, d.cfg.BaseDelay, d.cfg.MaxDelay))
	}
	if err := d.db.WithContext(ctx).Model(&domain.OutboxEvent{}).Where("id = ?", ev.ID).Updates(fields).Error; err != nil {
		log.Error("failed to record outbox failure", zap.Error(err))
		return
	}
	metrics.OutboxEvents.WithLabelValues(ev.Topic, result).Inc()
	log.Warn("outbox delivery failed",
		zap.Int("attempts", attempts),
		zap.String("result", result),
		zap.Error(herr),
	)
}

func safeCall(ctx context.Context, h Handler, ev *domain.OutboxEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, ev)
}

// Run calls RunOnce every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.log.Info("outbox dispatcher started", zap.Duration("interval", interval))
	for {
		if _, err := d.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("outbox run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			d.log.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// PurgeSent deletes delivered events older than the cutoff.
func PurgeSent(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", domain.OutboxSent, before).
		Delete(&domain.OutboxEvent{})
	return res.RowsAffected, res.Error
}
