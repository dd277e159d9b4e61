package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/services"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/snapshot"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, source, err := h.reportService.Load(c.UserContext())
	resp := dto.ReportListResponse{Source: source}
	if err != nil {
		captureException(c, err)
		resp.Error = "Failed to load reports from database"
	}

	if reporterID := strings.TrimSpace(c.Query("reporterId")); reporterID != "" {
		reports = snapshot.FilterByReporter(reports, reporterID)
	}
	if reports == nil {
		reports = []dto.Report{}
	}
	resp.Reports = reports
	return c.JSON(resp)
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.ReporterID == "" {
		req.ReporterID = middleware.GetReporterID(c)
	}

	result, err := h.reportService.Create(c.UserContext(), req)
	if errors.Is(err, services.ErrReportConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Report ID already exists",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	captureException(c, result.RemoteErr)

	return c.Status(fiber.StatusCreated).JSON(dto.ReportResponse{Report: result.Report})
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return nil
	}

	var req dto.UpdateReportRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.reportService.Update(c.UserContext(), id, req.ReportPatch, req.UpdateNote)
	if err != nil {
		return mutationError(c, err)
	}
	captureException(c, result.RemoteErr)

	return c.JSON(dto.ReportResponse{Report: result.Report})
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return nil
	}

	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.reportService.UpdateStatus(c.UserContext(), id, req.Status, req.Note)
	if err != nil {
		return mutationError(c, err)
	}
	captureException(c, result.RemoteErr)

	return c.JSON(dto.ReportResponse{Report: result.Report})
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return nil
	}

	out, err := h.reportService.Delete(c.UserContext(), id)
	captureException(c, out.RemoteErr)
	if err != nil {
		return mutationError(c, err)
	}

	return c.JSON(dto.DeleteReportResponse{Success: true, ID: id})
}

func (h *ReportHandler) Details(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return nil
	}

	details, err := h.reportService.Details(c.UserContext(), id)
	if err != nil {
		return mutationError(c, err)
	}
	return c.JSON(details)
}

// parseBody decodes a JSON body. Clients that omit the Content-Type header
// are still read as JSON; an empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if len(c.Request().Header.ContentType()) == 0 {
		return json.Unmarshal(body, out)
	}
	return c.BodyParser(out)
}

func requireID(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Report ID is required",
		})
		return "", false
	}
	return id, true
}

func mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		captureException(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process report",
		})
	}
}

// captureException forwards degraded-path errors to Sentry when the
// middleware attached a hub to the request.
func captureException(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
