package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/service"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

// AnalyticsHandler wires the teacher analytics routes.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics endpoints to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("", h.overview)
	router.Get("/:student_id", h.student)
}

func (h *AnalyticsHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "analytics retrieved", overview)
}

func (h *AnalyticsHandler) student(c *fiber.Ctx) error {
	entry, err := h.service.Student(c.Context(), c.Params("student_id"))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "student analytics retrieved", entry)
}

func (h *AnalyticsHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
