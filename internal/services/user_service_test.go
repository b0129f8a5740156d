package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/local1284/membership/internal/auth"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/models"
	"go.uber.org/zap"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
	ops   []string
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	u.ID = uuid.New()
	cp := *u
	s.users[u.ID] = &cp
	s.ops = append(s.ops, "create")
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

func (s *fakeUserStore) Update(_ context.Context, u *models.User) error {
	cp := *u
	s.users[u.ID] = &cp
	s.ops = append(s.ops, "update")
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.users[id].PasswordHash = passwordHash
	s.ops = append(s.ops, "update_password")
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.users[id].IsActive = active
	s.ops = append(s.ops, "set_active")
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, _ uuid.UUID) error {
	s.ops = append(s.ops, "update_last_login")
	return nil
}

func testUserConfig() *config.Config {
	return &config.Config{
		PasswordPolicy: config.PasswordPolicy{
			MinLength:        12,
			MaxLength:        128,
			RequireLowercase: true,
			RequireUppercase: true,
			RequireDigits:    true,
			RequireSymbols:   true,
		},
		BcryptCost: 4,
	}
}

func testAdminUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "staff@local1284.org",
		Role:     "staff",
		Status:   models.UserStatusActive,
		IsActive: true,
	}
}

func TestUpdateRejectsWeakPasswordBeforeAnyWrite(t *testing.T) {
	existing := testAdminUser()
	store := newFakeUserStore(existing)
	audit := &fakeAuditStore{}
	svc := NewUserService(store, NewAuditTrail(audit, nil, zap.NewNop()), testUserConfig(), zap.NewNop())

	newEmail := "renamed@local1284.org"
	weak := "short"
	_, err := svc.Update(context.Background(), Caller{}, existing.ID, UserUpdate{
		Email:    &newEmail,
		Password: &weak,
	})

	var policyErr *auth.PolicyViolationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("err = %v, want *auth.PolicyViolationError", err)
	}
	if len(store.ops) != 0 {
		t.Errorf("rejected update must not touch the store, got ops %v", store.ops)
	}
	if got := store.users[existing.ID].Email; got != existing.Email {
		t.Errorf("email = %q, profile must stay unchanged", got)
	}
	if len(audit.entries) != 0 {
		t.Errorf("rejected update must not be audited, got %d entries", len(audit.entries))
	}
}

func TestUpdateWithPasswordAuditsOnce(t *testing.T) {
	existing := testAdminUser()
	store := newFakeUserStore(existing)
	audit := &fakeAuditStore{}
	svc := NewUserService(store, NewAuditTrail(audit, nil, zap.NewNop()), testUserConfig(), zap.NewNop())

	newEmail := "renamed@local1284.org"
	strong := "Str0ng!Passw0rd"
	updated, err := svc.Update(context.Background(), Caller{}, existing.ID, UserUpdate{
		Email:    &newEmail,
		Password: &strong,
	})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Email != newEmail {
		t.Errorf("email = %q, want %q", updated.Email, newEmail)
	}
	if got := store.users[existing.ID].PasswordHash; !auth.VerifyPassword(strong, got) {
		t.Error("stored credential should verify the new password")
	}
	if len(store.ops) != 2 || store.ops[0] != "update" || store.ops[1] != "update_password" {
		t.Errorf("ops = %v, want [update update_password]", store.ops)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("got %d audit entries, want exactly 1", len(audit.entries))
	}
	e := audit.entries[0]
	if e.Action != models.ActionAdminUserUpdate {
		t.Errorf("action = %q", e.Action)
	}
	if e.Metadata["password_changed"] != true {
		t.Errorf("password_changed metadata = %v", e.Metadata["password_changed"])
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, NewAuditTrail(&fakeAuditStore{}, nil, zap.NewNop()), testUserConfig(), zap.NewNop())

	_, err := svc.Update(context.Background(), Caller{}, uuid.New(), UserUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
