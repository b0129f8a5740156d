package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/local1284/membership/internal/auth"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/rbac"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any login failure. Deliberately
// indistinguishable between unknown email, wrong password and deactivated
// account so the login surface does not leak account state.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidResetToken covers expired, malformed and mismatched reset tokens.
var ErrInvalidResetToken = errors.New("invalid or expired password reset token")

// UserStore is the persistence surface UserService depends on.
// *repositories.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	userRepo UserStore
	audit    *AuditTrail
	cfg      *config.Config
	log      *zap.Logger
}

func NewUserService(userRepo UserStore, audit *AuditTrail, cfg *config.Config, log *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, audit: audit, cfg: cfg, log: log}
}

// Authenticate verifies the credentials of an active account. The password
// is verified even when the account is unusable so response timing does not
// reveal whether the email exists.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		auth.VerifyPassword(password, "")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.Status != models.UserStatusActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to update last login", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
	return user, nil
}

// RecordLogin is called by the boundary after the session has been
// regenerated and saved.
func (s *UserService) RecordLogin(ctx context.Context, caller Caller, userID uuid.UUID) {
	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionUserLogin,
		EntityType: "user",
		EntityID:   userID.String(),
	})
}

func (s *UserService) RecordLogout(ctx context.Context, caller Caller, userID string) {
	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionUserLogout,
		EntityType: "user",
		EntityID:   userID,
	})
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// Create provisions an admin user. The password runs through the strength
// policy before hashing; policy failures surface as *auth.PolicyViolationError.
func (s *UserService) Create(ctx context.Context, caller Caller, user *models.User, password string) error {
	if !rbac.IsValidRole(user.Role) {
		return fmt.Errorf("invalid role %q", user.Role)
	}

	hash, err := auth.HashPassword(password, s.cfg.PasswordPolicy, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionAdminUserCreate,
		EntityType: "admin_user",
		EntityID:   user.ID.String(),
		After:      user.Snapshot(),
	})
	return nil
}

// UserUpdate is a partial admin-user mutation. Password, when set, is
// re-validated against the policy and rehashed.
type UserUpdate struct {
	Email      *string
	Role       *string
	FirstName  *string
	LastName   *string
	Phone      *string
	Status     *string
	CanSendSMS *bool
	Password   *string
}

func (s *UserService) Update(ctx context.Context, caller Caller, id uuid.UUID, update UserUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	before := user.Snapshot()

	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		if !rbac.IsValidRole(*update.Role) {
			return nil, fmt.Errorf("invalid role %q", *update.Role)
		}
		user.Role = *update.Role
	}
	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.Phone != nil {
		user.Phone = update.Phone
	}
	if update.Status != nil {
		user.Status = *update.Status
	}
	if update.CanSendSMS != nil {
		user.CanSendSMS = *update.CanSendSMS
	}

	// Hash before any write so a password policy failure rejects the whole
	// update instead of leaving the profile committed without an audit entry.
	var newHash string
	if update.Password != nil {
		newHash, err = auth.HashPassword(*update.Password, s.cfg.PasswordPolicy, s.cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if update.Password != nil {
		if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
			return nil, err
		}
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionAdminUserUpdate,
		EntityType: "admin_user",
		EntityID:   user.ID.String(),
		Before:     before,
		After:      user.Snapshot(),
		Metadata:   map[string]any{"password_changed": update.Password != nil},
	})
	return user, nil
}

// SetActive toggles soft deactivation. Accounts are never hard-deleted so
// historical audit actors stay resolvable.
func (s *UserService) SetActive(ctx context.Context, caller Caller, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	before := user.Snapshot()
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionAdminUserUpdate,
		EntityType: "admin_user",
		EntityID:   user.ID.String(),
		Before:     before,
		After:      user.Snapshot(),
		Notes:      "Active flag toggled",
	})
	return user, nil
}

// RequestPasswordReset mints a reset token for an existing active account.
// Returns an empty token for unknown emails; the boundary answers the same
// way in both cases to avoid account enumeration.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", nil
	}

	return auth.GenerateResetToken(s.cfg.ResetTokenSecret, user.ID, user.Email, s.cfg.ResetTokenTTL)
}

// ConfirmPasswordReset validates the token and applies the new password
// through the strength policy.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, caller Caller, tokenStr, newPassword string) error {
	claims, err := auth.ParseResetToken(s.cfg.ResetTokenSecret, tokenStr)
	if err != nil {
		return ErrInvalidResetToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.PasswordPolicy, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionUserPasswordReset,
		EntityType: "user",
		EntityID:   user.ID.String(),
	})
	return nil
}
