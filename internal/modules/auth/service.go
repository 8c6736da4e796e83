package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/pkg/password"
	"evea/internal/pkg/validator"
	"evea/internal/repository"
	"evea/internal/verification"
)

// Service contains all business logic for authentication
type Service struct {
	db      *gorm.DB
	users   *repository.UserRepository
	vendors *repository.VendorRepository
	issuer  *verification.Issuer
	jwt     tokenSigner
	google  GoogleExchanger
	log     *zap.Logger
}

// NewService wires the auth service. google may be nil, in which case the
// OAuth endpoints report ErrGoogleDisabled.
func NewService(db *gorm.DB, jwt tokenSigner, google GoogleExchanger, verificationTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:      db,
		users:   repository.NewUserRepository(db),
		vendors: repository.NewVendorRepository(db),
		issuer:  verification.NewIssuer(verificationTTL),
		jwt:     jwt,
		google:  google,
		log:     log,
	}
}

// Register creates an active customer account, queues the verification email
// and signs the customer in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var phone *string
	if req.Phone != "" {
		p := validator.NormalizePhone(req.Phone)
		phone = &p
	}

	if err := s.checkUnique(ctx, email, phone); err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		_, err := s.issuer.Issue(ctx, tx, user)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			if uerr := s.checkUnique(ctx, email, phone); uerr != nil {
				return nil, uerr
			}
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("customer registered", zap.Int64("user_id", user.ID))
	return s.session(user, nil)
}

func (s *Service) checkUnique(ctx context.Context, email string, phone *string) error {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailAlreadyExists
	}
	if phone == nil {
		return nil
	}
	if taken, err = s.users.PhoneExists(ctx, *phone); err != nil {
		return err
	}
	if taken {
		return ErrPhoneAlreadyExists
	}
	return nil
}

// Login signs in any role. Credentials are checked before account status so
// the status of an account is never revealed to someone without its password.
func (s *Service) Login(ctx context.Context, email, pass string) (*Session, error) {
	user, err := s.authenticate(ctx, email, pass)
	if err != nil {
		return nil, err
	}

	var vendor *domain.Vendor
	if user.Role == domain.RoleVendor {
		if vendor, err = s.vendorFor(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := checkActive(user, vendor); err != nil {
		return nil, err
	}
	return s.signIn(ctx, user, vendor)
}

// VendorLogin is Login restricted to approved vendors.
func (s *Service) VendorLogin(ctx context.Context, email, pass string) (*Session, error) {
	user, err := s.authenticate(ctx, email, pass)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleVendor {
		return nil, ErrNotVendor
	}

	vendor, err := s.vendorFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrNotVendor
	}
	if err := checkActive(user, vendor); err != nil {
		return nil, err
	}
	if vendor.VerificationStatus != domain.VendorApproved {
		return nil, ErrAccountPending
	}
	return s.signIn(ctx, user, vendor)
}

func (s *Service) authenticate(ctx context.Context, email, pass string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.Check(pass, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) vendorFor(ctx context.Context, user *domain.User) (*domain.Vendor, error) {
	v, err := s.vendors.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func checkActive(user *domain.User, vendor *domain.Vendor) error {
	if vendor != nil && vendor.VerificationStatus == domain.VendorSuspended {
		return ErrAccountSuspended
	}
	if !user.IsActive {
		if user.Role == domain.RoleVendor {
			return ErrAccountPending
		}
		return ErrAccountDisabled
	}
	return nil
}

func (s *Service) signIn(ctx context.Context, user *domain.User, vendor *domain.Vendor) (*Session, error) {
	if err := s.users.TouchLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record login time", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return s.session(user, vendor)
}

func (s *Service) session(user *domain.User, vendor *domain.Vendor) (*Session, error) {
	p := domain.Principal{UserID: user.ID, Role: user.Role, Email: user.Email}
	if vendor != nil {
		p.VendorID = &vendor.ID
	}
	token, err := s.jwt.GenerateToken(p)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{User: user, Vendor: vendor, Token: token}, nil
}

// Me loads the signed-in user and, for vendors, the application.
func (s *Service) Me(ctx context.Context, p *domain.Principal) (*domain.User, *domain.Vendor, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	var vendor *domain.Vendor
	if user.Role == domain.RoleVendor {
		if vendor, err = s.vendorFor(ctx, user); err != nil {
			return nil, nil, err
		}
	}
	return user, vendor, nil
}

func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback finishes the OAuth flow. The user is matched by Google
// subject first. Otherwise the Google email must be verified: an existing
// account with that email is linked once it passes the status checks, or a
// new active customer is created.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*Session, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}
	id, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("google exchange failed", zap.Error(err))
		return nil, ErrGoogleAuth
	}

	user, err := s.users.GetByGoogleID(ctx, id.Subject)
	switch {
	case err == nil:
		return s.googleSignIn(ctx, user, nil)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if !id.EmailVerified {
		s.log.Warn("google sign-in with unverified email refused", zap.String("subject", id.Subject))
		return nil, ErrGoogleEmailUnverified
	}

	user, err = s.users.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		return s.googleSignIn(ctx, user, id)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if user, err = s.createGoogleUser(ctx, id); err != nil {
		return nil, err
	}
	return s.googleSignIn(ctx, user, nil)
}

// googleSignIn applies the status checks and, when link is set, records the
// Google identity on the account only after they pass.
func (s *Service) googleSignIn(ctx context.Context, user *domain.User, link *GoogleIdentity) (*Session, error) {
	var vendor *domain.Vendor
	var err error
	if user.Role == domain.RoleVendor {
		if vendor, err = s.vendorFor(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := checkActive(user, vendor); err != nil {
		return nil, err
	}
	if link != nil {
		if err := s.linkGoogle(ctx, user, link); err != nil {
			return nil, err
		}
	}
	return s.signIn(ctx, user, vendor)
}

func (s *Service) linkGoogle(ctx context.Context, user *domain.User, id *GoogleIdentity) error {
	fields := map[string]any{"google_id": id.Subject}
	if !user.EmailVerified {
		fields["email_verified"] = true
		fields["email_verified_at"] = time.Now().UTC()
		user.EmailVerified = true
	}
	if user.AvatarURL == "" && id.Picture != "" {
		fields["avatar_url"] = id.Picture
		user.AvatarURL = id.Picture
	}
	if err := s.users.UpdateFields(ctx, user.ID, fields); err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	user.GoogleID = &id.Subject
	s.log.Info("linked google account", zap.Int64("user_id", user.ID))
	return nil
}

func (s *Service) createGoogleUser(ctx context.Context, id *GoogleIdentity) (*domain.User, error) {
	// Password sign-in stays unusable until the user sets one.
	random, err := password.Temporary()
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(random)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = strings.Split(id.Email, "@")[0]
	}
	user := &domain.User{
		FullName:        name,
		Email:           strings.ToLower(id.Email),
		PasswordHash:    hash,
		Role:            domain.RoleCustomer,
		IsActive:        true,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
		GoogleID:        &id.Subject,
		AvatarURL:       id.Picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}
	s.log.Info("customer registered via google", zap.Int64("user_id", user.ID))
	return user, nil
}
