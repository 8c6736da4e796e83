package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/domain/onboarding"
	"evea/internal/outbox"
	"evea/internal/pkg/metrics"
	"evea/internal/pkg/password"
	"evea/internal/pkg/utils"
	"evea/internal/repository"
)

// Service carries out admin decisions on vendor applications. Each decision
// is one transaction: the vendor compare-and-set, the audit row, any user or
// listing changes and the outbox event commit or roll back together.
type Service struct {
	db        *gorm.DB
	users     *repository.UserRepository
	vendors   *repository.VendorRepository
	services  *repository.VendorServiceRepository
	documents *repository.DocumentRepository
	reviews   *repository.AdminReviewRepository
	cards     *repository.VendorCardRepository
	log       *zap.Logger
	now       func() time.Time

	// invalidate runs after a change that alters the public listings.
	invalidate func(context.Context)
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:        db,
		users:     repository.NewUserRepository(db),
		vendors:   repository.NewVendorRepository(db),
		services:  repository.NewVendorServiceRepository(db),
		documents: repository.NewDocumentRepository(db),
		reviews:   repository.NewAdminReviewRepository(db),
		cards:     repository.NewVendorCardRepository(db),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OnListingsChanged registers fn to be called after approve, suspend and
// reinstate commit.
func (s *Service) OnListingsChanged(fn func(context.Context)) {
	s.invalidate = fn
}

func (s *Service) listingsChanged(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate(ctx)
	}
}

func record(event onboarding.Event, result string) {
	metrics.WorkflowTransitions.WithLabelValues(string(event), result).Inc()
}

func (s *Service) getVendor(ctx context.Context, id int64) (*domain.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return v, nil
}

// transition checks event against the vendor's current state.
func transition(v *domain.Vendor, event onboarding.Event) (onboarding.State, error) {
	next, err := onboarding.Transition(onboarding.Of(v), event)
	if err != nil {
		record(event, "rejected")
		return next, err
	}
	return next, nil
}

func txError(event onboarding.Event, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		record(event, "conflict")
		return ErrConflict
	}
	return err
}

// -------------------- Review queue --------------------

// ListPending returns applications awaiting a decision. status is "pending"
// (documents uploaded) or "verified" (documents checked). A row whose
// sub-entities fail to load is still returned with those fields left nil.
func (s *Service) ListPending(ctx context.Context, status string, page utils.Page) (*PendingList, error) {
	st := domain.VendorPending
	if status == string(domain.VendorVerified) {
		st = domain.VendorVerified
	}

	vendors, total, err := s.vendors.ListForReview(ctx, st, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list vendors for review: %w", err)
	}

	out := &PendingList{Vendors: make([]PendingVendor, 0, len(vendors)), Total: total}
	for i := range vendors {
		v := &vendors[i]
		row := PendingVendor{
			ID:                 v.ID,
			BusinessName:       v.BusinessName,
			City:               v.City,
			State:              v.State,
			RegistrationStep:   v.RegistrationStep,
			VerificationStatus: v.VerificationStatus,
			CreatedAt:          v.CreatedAt,
			User:               contactOf(v.User),
		}

		sheet, err := s.services.GetByVendorID(ctx, v.ID)
		switch {
		case err == nil:
			row.Service = sheet
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Warn("pending list: load vendor service", zap.Int64("vendor_id", v.ID), zap.Error(err))
		}

		if n, err := s.documents.CountByVendor(ctx, v.ID); err == nil {
			row.DocumentCount = &n
		} else {
			s.log.Warn("pending list: count documents", zap.Int64("vendor_id", v.ID), zap.Error(err))
		}

		out.Vendors = append(out.Vendors, row)
	}
	return out, nil
}

// Detail returns everything an admin needs to decide on one application.
func (s *Service) Detail(ctx context.Context, id int64) (*VendorDetail, error) {
	v, err := s.getVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &VendorDetail{Vendor: v, State: onboarding.Of(v).String(), User: contactOf(v.User)}
	if out.Service, err = s.services.GetByVendorID(ctx, id); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if out.Documents, err = s.documents.ListByVendor(ctx, id); err != nil {
		return nil, err
	}
	if out.Reviews, err = s.reviews.ListByVendor(ctx, id); err != nil {
		return nil, err
	}
	return out, nil
}

// -------------------- Decisions --------------------

// Approve activates the vendor account with a fresh temporary password,
// publishes its card and queues the credentials email.
func (s *Service) Approve(ctx context.Context, adminID, vendorID int64, notes string) (*ApproveResult, error) {
	v, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	next, err := transition(v, onboarding.EventApprove)
	if err != nil {
		return nil, err
	}

	sheet, err := s.services.GetByVendorID(ctx, v.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingDetails
		}
		return nil, err
	}

	temp, err := password.Temporary()
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vendors.WithTx(tx).CompareAndSet(ctx, v.ID, v.RegistrationStep, v.VerificationStatus, map[string]any{
			"registration_step":   next.Step(),
			"verification_status": next.Status(),
			"approved_at":         now,
			"approved_by":         adminID,
			"rejection_reason":    "",
		}); err != nil {
			return err
		}
		if err := s.users.WithTx(tx).UpdateFields(ctx, v.UserID, map[string]any{
			"password_hash": hash,
			"is_active":     true,
		}); err != nil {
			return fmt.Errorf("activate vendor user: %w", err)
		}
		if err := s.reviews.WithTx(tx).Create(ctx, &domain.AdminReview{
			VendorID:                v.ID,
			AdminID:                 adminID,
			ReviewStatus:            domain.ReviewApproved,
			ReviewNotes:             strings.TrimSpace(notes),
			DocumentsReviewed:       true,
			BusinessDetailsReviewed: true,
			ServicesReviewed:        true,
		}); err != nil {
			return err
		}
		if err := s.publishCard(ctx, tx, v, sheet); err != nil {
			return fmt.Errorf("publish vendor card: %w", err)
		}
		_, err := outbox.Enqueue(tx, outbox.TopicVendorApproved, lifecycle(v, adminID, "", temp), outbox.Sensitive())
		return err
	})
	if err != nil {
		return nil, txError(onboarding.EventApprove, err)
	}

	record(onboarding.EventApprove, "applied")
	s.log.Info("vendor approved", zap.Int64("vendor_id", v.ID), zap.Int64("admin_id", adminID))
	s.listingsChanged(ctx)
	return &ApproveResult{VendorID: v.ID, BusinessName: v.BusinessName}, nil
}

// ReissueCredentials replaces an approved vendor's password with a new
// temporary one and queues another credentials email. It recovers vendors
// whose approval email was never delivered.
func (s *Service) ReissueCredentials(ctx context.Context, adminID, vendorID int64) (*ApproveResult, error) {
	v, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if v.VerificationStatus != domain.VendorApproved {
		return nil, ErrNotApproved
	}

	temp, err := password.Temporary()
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Touching the vendor row under the current state makes a concurrent
		// suspend and this reissue serialize.
		if err := s.vendors.WithTx(tx).CompareAndSet(ctx, v.ID, v.RegistrationStep, v.VerificationStatus, map[string]any{}); err != nil {
			return err
		}
		if err := s.users.WithTx(tx).UpdateFields(ctx, v.UserID, map[string]any{"password_hash": hash}); err != nil {
			return fmt.Errorf("reset vendor password: %w", err)
		}
		_, err := outbox.Enqueue(tx, outbox.TopicCredentialsReissued, lifecycle(v, adminID, "", temp), outbox.Sensitive())
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.log.Info("vendor credentials reissued", zap.Int64("vendor_id", v.ID), zap.Int64("admin_id", adminID))
	return &ApproveResult{VendorID: v.ID, BusinessName: v.BusinessName}, nil
}

// publishCard makes the vendor's listing visible, creating it from the
// pricing sheet on first approval.
func (s *Service) publishCard(ctx context.Context, tx *gorm.DB, v *domain.Vendor, sheet *domain.VendorService) error {
	cards := s.cards.WithTx(tx)
	_, err := cards.GetByVendorID(ctx, v.ID)
	switch {
	case err == nil:
		return cards.SetPublished(ctx, v.ID, true)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return cards.Create(ctx, &domain.VendorCard{
		VendorID:    v.ID,
		CategoryID:  sheet.CategoryID,
		Title:       v.BusinessName,
		Description: sheet.ServiceType,
		City:        v.City,
		State:       v.State,
		PriceFrom:   sheet.StartingPrice(),
		IsPublished: true,
	})
}

// Reject closes the application. The reason is validated before anything is
// read or written.
func (s *Service) Reject(ctx context.Context, adminID, vendorID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minRejectionReason {
		return ErrReasonTooShort
	}

	v, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	next, err := transition(v, onboarding.EventReject)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"verification_status": next.Status(),
		"rejection_reason":    reason,
	}
	if step := next.Step(); step != 0 {
		fields["registration_step"] = step
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vendors.WithTx(tx).CompareAndSet(ctx, v.ID, v.RegistrationStep, v.VerificationStatus, fields); err != nil {
			return err
		}
		if err := s.reviews.WithTx(tx).Create(ctx, &domain.AdminReview{
			VendorID:                v.ID,
			AdminID:                 adminID,
			ReviewStatus:            domain.ReviewRejected,
			ReviewNotes:             reason,
			DocumentsReviewed:       true,
			BusinessDetailsReviewed: true,
			ServicesReviewed:        true,
		}); err != nil {
			return err
		}
		_, err := outbox.Enqueue(tx, outbox.TopicVendorRejected, lifecycle(v, adminID, reason, ""))
		return err
	})
	if err != nil {
		return txError(onboarding.EventReject, err)
	}

	record(onboarding.EventReject, "applied")
	s.log.Info("vendor rejected", zap.Int64("vendor_id", v.ID), zap.Int64("admin_id", adminID))
	return nil
}

// VerifyDocuments marks every pending document verified and moves the
// application to documents_verified. It returns how many documents changed.
func (s *Service) VerifyDocuments(ctx context.Context, adminID, vendorID int64, notes string) (int64, error) {
	v, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return 0, err
	}
	next, err := transition(v, onboarding.EventVerifyDocuments)
	if err != nil {
		return 0, err
	}

	notes = strings.TrimSpace(notes)
	var changed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vendors.WithTx(tx).CompareAndSet(ctx, v.ID, v.RegistrationStep, v.VerificationStatus, map[string]any{
			"registration_step":   next.Step(),
			"verification_status": next.Status(),
		}); err != nil {
			return err
		}
		n, err := s.documents.WithTx(tx).VerifyPending(ctx, v.ID, notes, s.now())
		if err != nil {
			return err
		}
		changed = n
		return s.reviews.WithTx(tx).Create(ctx, &domain.AdminReview{
			VendorID:          v.ID,
			AdminID:           adminID,
			ReviewStatus:      domain.ReviewPending,
			ReviewNotes:       notes,
			DocumentsReviewed: true,
		})
	})
	if err != nil {
		return 0, txError(onboarding.EventVerifyDocuments, err)
	}

	record(onboarding.EventVerifyDocuments, "applied")
	return changed, nil
}

// ReviewDocument records a decision on a single document.
func (s *Service) ReviewDocument(ctx context.Context, documentID int64, status domain.DocumentStatus, notes string) (*domain.VendorDocument, error) {
	if err := s.documents.Review(ctx, documentID, status, strings.TrimSpace(notes), s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.documents.GetByID(ctx, documentID)
}

// Suspend hides an approved vendor's card and blocks its logins.
func (s *Service) Suspend(ctx context.Context, adminID, vendorID int64, reason string) error {
	return s.toggle(ctx, adminID, vendorID, strings.TrimSpace(reason), onboarding.EventSuspend)
}

// Reinstate reverses Suspend.
func (s *Service) Reinstate(ctx context.Context, adminID, vendorID int64, reason string) error {
	return s.toggle(ctx, adminID, vendorID, strings.TrimSpace(reason), onboarding.EventReinstate)
}

func (s *Service) toggle(ctx context.Context, adminID, vendorID int64, reason string, event onboarding.Event) error {
	v, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	next, err := transition(v, event)
	if err != nil {
		return err
	}

	suspend := event == onboarding.EventSuspend
	fields := map[string]any{
		"registration_step":   next.Step(),
		"verification_status": next.Status(),
		"suspended_at":        nil,
	}
	topic := outbox.TopicVendorReinstated
	if suspend {
		fields["suspended_at"] = s.now()
		topic = outbox.TopicVendorSuspended
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vendors.WithTx(tx).CompareAndSet(ctx, v.ID, v.RegistrationStep, v.VerificationStatus, fields); err != nil {
			return err
		}
		if err := s.cards.WithTx(tx).SetPublished(ctx, v.ID, !suspend); err != nil {
			return err
		}
		_, err := outbox.Enqueue(tx, topic, lifecycle(v, adminID, reason, ""))
		return err
	})
	if err != nil {
		return txError(event, err)
	}

	record(event, "applied")
	s.log.Info("vendor status changed",
		zap.String("event", string(event)),
		zap.Int64("vendor_id", v.ID),
		zap.Int64("admin_id", adminID),
	)
	s.listingsChanged(ctx)
	return nil
}

func lifecycle(v *domain.Vendor, adminID int64, reason, tempPassword string) outbox.VendorLifecycle {
	ev := outbox.VendorLifecycle{
		VendorID:     v.ID,
		UserID:       v.UserID,
		BusinessName: v.BusinessName,
		AdminID:      adminID,
		Reason:       reason,
		TempPassword: tempPassword,
	}
	if v.User != nil {
		ev.Email = v.User.Email
		ev.Name = v.User.FullName
	}
	return ev
}

// -------------------- Statistics --------------------

type countQuery struct {
	dst   *int64
	model any
	where string
	args  []any
}

func (s *Service) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	var out StatisticsResponse
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	queries := []countQuery{
		{&out.TotalUsers, &domain.User{}, "", nil},
		{&out.TotalVendors, &domain.Vendor{}, "", nil},
		{&out.PendingReview, &domain.Vendor{}, "registration_step = ? AND verification_status IN ?",
			[]any{domain.StepDocumentsUploaded, []domain.VerificationStatus{domain.VendorPending, domain.VendorVerified}}},
		{&out.ApprovedVendors, &domain.Vendor{}, "verification_status = ?", []any{domain.VendorApproved}},
		{&out.PublishedCards, &domain.VendorCard{}, "is_published = ?", []any{true}},
		{&out.TotalOrders, &domain.Order{}, "", nil},
		{&out.OrdersToday, &domain.Order{}, "created_at >= ? AND created_at < ?", []any{today, today.Add(24 * time.Hour)}},
		{&out.FailedOutboxJobs, &domain.OutboxEvent{}, "status = ?", []any{domain.OutboxFailed}},
	}
	for _, c := range queries {
		q := s.db.WithContext(ctx).Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
	}
	return &out, nil
}
