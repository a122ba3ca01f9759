package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/service"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

// AuthHandler wires login endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/teacher", h.teacherLogin)
	router.Post("/student", h.studentLogin)
}

func (h *AuthHandler) teacherLogin(c *fiber.Ctx) error {
	var payload dto.TeacherLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.TeacherLogin(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) studentLogin(c *fiber.Ctx) error {
	var payload dto.StudentLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.StudentLogin(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNoAssignmentForStudent):
		return utils.SendError(c, fiber.StatusForbidden, "no quiz assigned to this student")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
