package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/rbac"
	"github.com/local1284/membership/internal/repositories"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

type memoryMemberStore struct {
	members map[uuid.UUID]*models.Member
}

func newMemoryMemberStore(members ...*models.Member) *memoryMemberStore {
	s := &memoryMemberStore{members: make(map[uuid.UUID]*models.Member)}
	for _, m := range members {
		cp := *m
		s.members[m.ID] = &cp
	}
	return s
}

func (s *memoryMemberStore) Create(_ context.Context, m *models.Member) error {
	m.ID = uuid.New()
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

func (s *memoryMemberStore) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (s *memoryMemberStore) Update(_ context.Context, m *models.Member) error {
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

func (s *memoryMemberStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.members, id)
	return nil
}

func (s *memoryMemberStore) List(_ context.Context, _ repositories.MemberFilter) ([]models.Member, int, error) {
	var members []models.Member
	for _, m := range s.members {
		members = append(members, *m)
	}
	return members, len(members), nil
}

type memoryAuditStore struct {
	entries []*models.AuditEntry
}

func (s *memoryAuditStore) Record(_ context.Context, entry *models.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

// memberTestApp wires the member routes with the same guards the router
// mounts them behind.
func memberTestApp(identity *rbac.Identity, store *memoryMemberStore, audit *memoryAuditStore) *fiber.App {
	trail := services.NewAuditTrail(audit, nil, zap.NewNop())
	svc := services.NewMemberService(store, trail, zap.NewNop())
	h := NewMemberHandler(svc, zap.NewNop())

	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		if identity != nil {
			c.Locals(middleware.CtxIdentity, identity)
		}
		return c.Next()
	})

	grp := app.Group("/api/members", middleware.RequireAuth())
	grp.Post("/", middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin, rbac.RoleStaff), h.Create)
	grp.Put("/:id", middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin, rbac.RoleStaff, rbac.RoleSteward), h.Update)
	grp.Delete("/:id", middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin), h.Delete)
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func testMember() *models.Member {
	email := "ada@example.org"
	return &models.Member{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Diaz",
		Email:     &email,
		Status:    models.MemberStatusHBU,
		Tags:      []string{},
		SMSGroups: []string{},
	}
}

func TestMemberCreateAsStaff(t *testing.T) {
	store := newMemoryMemberStore()
	audit := &memoryAuditStore{}
	app := memberTestApp(&rbac.Identity{ID: "u1", Email: "s@local1284.org", Role: rbac.RoleStaff}, store, audit)

	resp, err := app.Test(jsonRequest("POST", "/api/members", map[string]any{
		"first_name": "Ada",
		"last_name":  "Diaz",
		"status":     "HBU",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(store.members) != 1 {
		t.Fatalf("store has %d members, want 1", len(store.members))
	}
	if len(audit.entries) != 1 {
		t.Fatalf("got %d audit entries, want exactly 1", len(audit.entries))
	}
	e := audit.entries[0]
	if e.Action != models.ActionMemberCreate {
		t.Errorf("action = %q, want %q", e.Action, models.ActionMemberCreate)
	}
	if e.Before != nil {
		t.Error("create entry should have nil before snapshot")
	}
	if e.After == nil {
		t.Error("create entry should carry an after snapshot")
	}
	if e.Actor == nil || e.Actor.Email != "s@local1284.org" {
		t.Error("entry should carry the acting staff user")
	}
}

func TestMemberDeleteRoleSplit(t *testing.T) {
	member := testMember()

	t.Run("staff is denied", func(t *testing.T) {
		store := newMemoryMemberStore(member)
		audit := &memoryAuditStore{}
		app := memberTestApp(&rbac.Identity{ID: "u1", Role: rbac.RoleStaff}, store, audit)

		resp, err := app.Test(httptest.NewRequest("DELETE", "/api/members/"+member.ID.String(), nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
		if _, ok := store.members[member.ID]; !ok {
			t.Error("denied delete must not remove the member")
		}
		if len(audit.entries) != 0 {
			t.Errorf("denied delete must not be audited, got %d entries", len(audit.entries))
		}
	})

	t.Run("admin deletes with audit", func(t *testing.T) {
		store := newMemoryMemberStore(member)
		audit := &memoryAuditStore{}
		app := memberTestApp(&rbac.Identity{ID: "u2", Role: rbac.RoleAdmin}, store, audit)

		resp, err := app.Test(httptest.NewRequest("DELETE", "/api/members/"+member.ID.String(), nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if _, ok := store.members[member.ID]; ok {
			t.Error("member should be gone")
		}
		if len(audit.entries) != 1 {
			t.Fatalf("got %d audit entries, want exactly 1", len(audit.entries))
		}
		e := audit.entries[0]
		if e.Action != models.ActionMemberDelete {
			t.Errorf("action = %q, want %q", e.Action, models.ActionMemberDelete)
		}
		if e.Before == nil {
			t.Error("delete entry should carry a before snapshot")
		}
		if e.After != nil {
			t.Error("delete entry should have nil after snapshot")
		}
	})
}

func TestMemberUpdateStewardFieldRestriction(t *testing.T) {
	member := testMember()

	t.Run("restricted field denied whole", func(t *testing.T) {
		store := newMemoryMemberStore(member)
		audit := &memoryAuditStore{}
		app := memberTestApp(&rbac.Identity{ID: "u3", Role: rbac.RoleSteward}, store, audit)

		resp, err := app.Test(jsonRequest("PUT", "/api/members/"+member.ID.String(), map[string]any{
			"email":             "hijacked@example.org",
			"department_number": "12",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
		if got := *store.members[member.ID].Email; got != "ada@example.org" {
			t.Errorf("email = %q, denied update must not apply anything", got)
		}
		if store.members[member.ID].DepartmentNumber != nil {
			t.Error("denied update must not apply the allowed field either")
		}
		if len(audit.entries) != 0 {
			t.Errorf("denied update must not be audited, got %d entries", len(audit.entries))
		}
	})

	t.Run("allowed fields pass", func(t *testing.T) {
		store := newMemoryMemberStore(member)
		audit := &memoryAuditStore{}
		app := memberTestApp(&rbac.Identity{ID: "u3", Role: rbac.RoleSteward}, store, audit)

		resp, err := app.Test(jsonRequest("PUT", "/api/members/"+member.ID.String(), map[string]any{
			"department_number": "12",
			"status":            "SBU",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		got := store.members[member.ID]
		if got.DepartmentNumber == nil || *got.DepartmentNumber != "12" {
			t.Error("department_number should be applied")
		}
		if got.Status != models.MemberStatusSBU {
			t.Errorf("status = %q, want SBU", got.Status)
		}
		if len(audit.entries) != 1 || audit.entries[0].Action != models.ActionMemberUpdate {
			t.Fatalf("want exactly one member.update audit entry, got %+v", audit.entries)
		}
		if audit.entries[0].Before == nil || audit.entries[0].After == nil {
			t.Error("update entry should bracket before and after snapshots")
		}
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		store := newMemoryMemberStore(member)
		app := memberTestApp(nil, store, &memoryAuditStore{})

		resp, err := app.Test(jsonRequest("PUT", "/api/members/"+member.ID.String(), map[string]any{
			"department_number": "12",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})
}
