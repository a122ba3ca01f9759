package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/service"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

// ResultsHandler wires teacher-side result review routes.
type ResultsHandler struct {
	service service.ResultsService
	logger  zerolog.Logger
}

// NewResultsHandler constructs the handler.
func NewResultsHandler(service service.ResultsService, logger zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		service: service,
		logger:  logger.With().Str("component", "results_handler").Logger(),
	}
}

// Register attaches result endpoints to the router group.
func (h *ResultsHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("/:id/regrade", h.regrade)
	router.Post("/:id/report", h.report)
}

func (h *ResultsHandler) list(c *fiber.Ctx) error {
	results, err := h.service.List(c.Context(), c.Query("student_id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultsHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *ResultsHandler) regrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Regrade(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission regraded", result)
}

func (h *ResultsHandler) report(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SendReport(c.Context(), id, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "report sent", fiber.Map{"submission_id": id})
}

func (h *ResultsHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusConflict, "assignment no longer exists")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}
