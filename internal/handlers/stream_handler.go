package handlers

import (
	"bufio"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/services"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/snapshot"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

var (
	errStreamClosed      = errors.New("stream closed")
	errSubscriberLagging = errors.New("subscriber buffer full")
)

var keepaliveFrame = []byte(":\n\n")

type StreamHandler struct {
	reportService *services.ReportService
	keepalive     time.Duration
	buffer        int
}

func NewStreamHandler(reportService *services.ReportService, cfg *config.Config) *StreamHandler {
	buffer := cfg.StreamBuffer
	if buffer < 1 {
		buffer = 1
	}
	keepalive := cfg.StreamKeepalive
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &StreamHandler{reportService: reportService, keepalive: keepalive, buffer: buffer}
}

// Stream serves Server-Sent Events: one init frame with the snapshot, then
// every change, with a comment line as keepalive.
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	h.reportService.EnsureSnapshot(c.UserContext())
	store := h.reportService.Store()

	frames := make(chan []byte, h.buffer)
	done := make(chan struct{})
	var closeOnce sync.Once
	closeFn := func() { closeOnce.Do(func() { close(done) }) }

	// Called by the hub under the store lock; must never block.
	write := func(frame []byte) error {
		select {
		case <-done:
			return errStreamClosed
		default:
		}
		select {
		case frames <- frame:
			return nil
		default:
			return errSubscriberLagging
		}
	}

	id, err := store.Subscribe(write, closeFn)
	if err != nil {
		if errors.Is(err, snapshot.ErrTooManySubscribers) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many live connections, retry later",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to open stream",
		})
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			store.Hub().Release(id)
			closeFn()
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepalive := h.keepalive
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()
		defer cleanup()

		for {
			select {
			case frame := <-frames:
				if err := writeFrame(w, frame); err != nil {
					slog.Info("stream client gone", "subscriber_id", id, "error", err)
					return
				}
			case <-ticker.C:
				if err := writeFrame(w, keepaliveFrame); err != nil {
					slog.Info("stream client gone", "subscriber_id", id, "error", err)
					return
				}
			case <-done:
				return
			}
		}
	}))
	return nil
}

func writeFrame(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
