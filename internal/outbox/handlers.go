package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"evea/internal/domain"
	"evea/internal/pkg/mailer"
	"evea/internal/pkg/queue"
)

// Notifier stores an in-app notification and pushes it to connected clients.
// eventID makes the insert idempotent across redeliveries.
type Notifier interface {
	Notify(ctx context.Context, eventID string, n *domain.Notification) error
}

type Deps struct {
	Mailer      mailer.Mailer
	Notifier    Notifier
	Publisher   queue.Publisher
	FrontendURL string
	Log         *zap.Logger
}

type handlers struct {
	Deps
}

// RegisterHandlers binds every known topic. Steps inside a handler run in a
// fixed order: notification (idempotent), broker publish, then email, so a
// retry after an email failure does not duplicate the notification.
func RegisterHandlers(d *Dispatcher, deps Deps) {
	if deps.Publisher == nil {
		deps.Publisher = queue.Noop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &handlers{Deps: deps}

	d.Handle(TopicVerificationRequested, h.verificationRequested)
	d.Handle(TopicEmailVerified, h.emailVerified)
	d.Handle(TopicVendorApproved, h.vendorApproved)
	d.Handle(TopicVendorRejected, h.vendorRejected)
	d.Handle(TopicVendorSuspended, h.vendorSuspended)
	d.Handle(TopicVendorReinstated, h.vendorReinstated)
	d.Handle(TopicCredentialsReissued, h.credentialsReissued)
	d.Handle(TopicOrderPlaced, h.orderPlaced)
	d.Handle(TopicOrderStatusChanged, h.orderStatusChanged)
	d.Handle(TopicReviewCreated, h.reviewCreated)
}

func (h *handlers) link(path string, query url.Values) string {
	u := strings.TrimRight(h.FrontendURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (h *handlers) send(ctx context.Context, msg mailer.Message, err error) error {
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

func (h *handlers) publish(ctx context.Context, ev *domain.OutboxEvent, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.Publisher.Publish(ctx, ev.Topic, ev.ID, body)
}

func (h *handlers) notify(ctx context.Context, ev *domain.OutboxEvent, n *domain.Notification) error {
	if h.Notifier == nil || n.UserID == 0 {
		return nil
	}
	return h.Notifier.Notify(ctx, ev.ID, n)
}

func expiresIn(at time.Time) string {
	left := time.Until(at)
	switch {
	case left <= time.Hour:
		return "1 hour"
	case left < 48*time.Hour:
		return fmt.Sprintf("%d hours", int(left.Round(time.Hour).Hours()))
	default:
		return fmt.Sprintf("%d days", int(left.Round(24*time.Hour).Hours()/24))
	}
}

func (h *handlers) verificationRequested(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VerificationRequested](ev)
	if err != nil {
		return err
	}
	link := h.link("/verify-email", url.Values{"token": {p.Token}})
	msg, err := mailer.VerificationEmail(p.Email, p.Name, link, expiresIn(p.ExpiresAt))
	return h.send(ctx, msg, err)
}

func (h *handlers) emailVerified(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[EmailVerified](ev)
	if err != nil {
		return err
	}
	msg, err := mailer.WelcomeEmail(p.Email, p.Name, p.IsVendor)
	return h.send(ctx, msg, err)
}

func vendorData(p VendorLifecycle) map[string]any {
	return map[string]any{"vendorId": p.VendorID, "businessName": p.BusinessName}
}

func (h *handlers) vendorApproved(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VendorLifecycle](ev)
	if err != nil {
		return err
	}
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.UserID,
		Type:    domain.NotifVendorApproved,
		Title:   "Your vendor account is approved",
		Message: fmt.Sprintf("%s is now live on Evea. Check your email for sign-in details.", p.BusinessName),
		Data:    vendorData(p),
	}); err != nil {
		return err
	}

	public := p
	public.TempPassword = ""
	if err := h.publish(ctx, ev, public); err != nil {
		return err
	}

	msg, err := mailer.CredentialsEmail(p.Email, p.Name, p.BusinessName, p.TempPassword, h.link("/vendor/login", nil))
	return h.send(ctx, msg, err)
}

func (h *handlers) credentialsReissued(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VendorLifecycle](ev)
	if err != nil {
		return err
	}
	msg, err := mailer.CredentialsEmail(p.Email, p.Name, p.BusinessName, p.TempPassword, h.link("/vendor/login", nil))
	return h.send(ctx, msg, err)
}

func (h *handlers) vendorRejected(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VendorLifecycle](ev)
	if err != nil {
		return err
	}
	data := vendorData(p)
	data["reason"] = p.Reason
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.UserID,
		Type:    domain.NotifVendorRejected,
		Title:   "Your vendor application was not approved",
		Message: p.Reason,
		Data:    data,
	}); err != nil {
		return err
	}
	if err := h.publish(ctx, ev, p); err != nil {
		return err
	}
	msg, err := mailer.RejectionEmail(p.Email, p.Name, p.BusinessName, p.Reason)
	return h.send(ctx, msg, err)
}

func (h *handlers) vendorSuspended(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VendorLifecycle](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("%s has been suspended and is hidden from customers.", p.BusinessName)
	if p.Reason != "" {
		body += " Reason: " + p.Reason
	}
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.UserID,
		Type:    domain.NotifVendorSuspended,
		Title:   "Your vendor account is suspended",
		Message: body,
		Data:    vendorData(p),
	}); err != nil {
		return err
	}
	if err := h.publish(ctx, ev, p); err != nil {
		return err
	}
	msg, err := mailer.StatusEmail(p.Email, p.Name, "Your Evea vendor account is suspended", body)
	return h.send(ctx, msg, err)
}

func (h *handlers) vendorReinstated(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[VendorLifecycle](ev)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("%s is visible to customers again.", p.BusinessName)
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.UserID,
		Type:    domain.NotifVendorReinstated,
		Title:   "Your vendor account is active again",
		Message: body,
		Data:    vendorData(p),
	}); err != nil {
		return err
	}
	if err := h.publish(ctx, ev, p); err != nil {
		return err
	}
	msg, err := mailer.StatusEmail(p.Email, p.Name, "Your Evea vendor account is reinstated", body)
	return h.send(ctx, msg, err)
}

func (h *handlers) orderPlaced(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[OrderEvent](ev)
	if err != nil {
		return err
	}
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.VendorUserID,
		Type:    domain.NotifOrderPlaced,
		Title:   "New order received",
		Message: fmt.Sprintf("New order #%d for %s (%s).", p.OrderID, p.CardTitle, p.Amount),
		Data:    map[string]any{"orderId": p.OrderID},
	}); err != nil {
		return err
	}
	return h.publish(ctx, ev, p)
}

func (h *handlers) orderStatusChanged(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[OrderEvent](ev)
	if err != nil {
		return err
	}
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.CustomerID,
		Type:    domain.NotifOrderStatusChanged,
		Title:   "Order " + p.Status,
		Message: fmt.Sprintf("Your order #%d for %s is now %s.", p.OrderID, p.CardTitle, p.Status),
		Data:    map[string]any{"orderId": p.OrderID, "status": p.Status},
	}); err != nil {
		return err
	}
	return h.publish(ctx, ev, p)
}

func (h *handlers) reviewCreated(ctx context.Context, ev *domain.OutboxEvent) error {
	p, err := Decode[ReviewCreated](ev)
	if err != nil {
		return err
	}
	if err := h.notify(ctx, ev, &domain.Notification{
		UserID:  p.VendorUserID,
		Type:    domain.NotifNewReview,
		Title:   "New review",
		Message: fmt.Sprintf("%s rated %s %d/5.", p.ReviewerName, p.CardTitle, p.Rating),
		Data:    map[string]any{"reviewId": p.ReviewID, "vendorCardId": p.VendorCardID},
	}); err != nil {
		return err
	}
	return h.publish(ctx, ev, p)
}
