package handler

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/service"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

// AssignmentHandler wires teacher-side quiz management routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.save)
	router.Get("/:student_id", h.get)
	router.Get("/:student_id/history", h.history)
	router.Delete("/:student_id", h.delete)
}

func (h *AssignmentHandler) save(c *fiber.Ctx) error {
	payload := dto.AssignmentCreateRequest{
		StudentID:   c.FormValue("student_id"),
		Subject:     c.FormValue("subject"),
		Content:     c.FormValue("content"),
		ContentType: c.FormValue("content_type"),
	}

	if raw := strings.TrimSpace(c.FormValue("timer_minutes")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid timer_minutes")
		}
		payload.TimerMinutes = minutes
	}

	if raw := strings.TrimSpace(c.FormValue("correct_answers")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload.CorrectAnswers); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid correct_answers")
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Save(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz saved", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	assignment, err := h.service.Get(c.Context(), c.Params("student_id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) history(c *fiber.Ctx) error {
	entries, err := h.service.History(c.Context(), c.Params("student_id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz history retrieved", entries)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	studentID := c.Params("student_id")
	if err := h.service.Delete(c.Context(), studentID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"student_id": studentID})
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrNotPDF):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "uploaded file must be a PDF")
	case errors.Is(err, service.ErrContentEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, "quiz content is empty")
	case errors.Is(err, service.ErrExamPaperRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "exam paper file is required")
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, "student id and subject are required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
