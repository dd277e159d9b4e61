package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/snapshot"
	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the remote store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	store *snapshot.Store
}

func NewHealthHandler(db Pinger, store *snapshot.Store) *HealthHandler {
	return &HealthHandler{db: db, store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		Subscribers: h.store.Hub().Count(),
		Reports:     h.store.Len(),
	})
}
