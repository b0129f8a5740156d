package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/events"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/rbac"
	"go.uber.org/zap"
)

// AuditFeedHub streams audit entries to connected admin dashboards as they
// are recorded.
type AuditFeedHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[*websocket.Conn]struct{}
}

func NewAuditFeedHub(subscriber events.Subscriber, log *zap.Logger) *AuditFeedHub {
	return &AuditFeedHub{
		subscriber:  subscriber,
		log:         log,
		connections: make(map[*websocket.Conn]struct{}),
	}
}

func (h *AuditFeedHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamAudit, func(event events.Event) {
		h.broadcast(event)
	})
}

func (h *AuditFeedHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// UpgradeMiddleware admits websocket upgrades from admin sessions only.
// Runs after the identity middleware so the session is already resolved.
func (h *AuditFeedHub) UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		decision := rbac.Authorize(middleware.GetIdentity(c), rbac.RoleSuperadmin, rbac.RoleAdmin)
		if !decision.Allowed {
			if decision.Reason == rbac.ReasonAuthenticationRequired {
				return middleware.RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
			}
			return middleware.RespondError(c, fiber.StatusForbidden, "Insufficient permissions.")
		}
		return c.Next()
	}
}

func (h *AuditFeedHub) HandleWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.connections, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop, keeps the connection alive until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
