package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/pkg/utils"
	"evea/internal/repository"
)

var ErrNotFound = errors.New("notification not found")

type Service struct {
	repo *repository.NotificationRepository
	hub  *Hub
	log  *zap.Logger
}

// NewService wires the notification service. hub may be nil when no
// realtime delivery is needed (CLI worker, tests).
func NewService(db *gorm.DB, hub *Hub, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo: repository.NewNotificationRepository(db),
		hub:  hub,
		log:  log,
	}
}

// Notify stores n on behalf of the outbox event and pushes it to the user's
// open connections. A redelivered event is stored once and not pushed again.
func (s *Service) Notify(ctx context.Context, eventID string, n *domain.Notification) error {
	if eventID != "" {
		n.EventID = &eventID
	}
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return err
	}
	if !created {
		s.log.Debug("notification already stored", zap.String("event_id", eventID))
		return nil
	}

	if s.hub != nil {
		s.hub.Push(n.UserID, &Event{Type: EventNotification, Payload: n})
	}
	return nil
}

type List struct {
	Notifications []domain.Notification
	Total         int64
	UnreadCount   int64
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, page utils.Page) (*List, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return &List{Notifications: items, Total: total, UnreadCount: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	err := s.repo.MarkRead(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
