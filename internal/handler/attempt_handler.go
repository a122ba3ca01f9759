package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/service"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

const tickerInterval = time.Second

// AttemptHandler wires student-side quiz taking routes, including the
// websocket countdown ticker.
type AttemptHandler struct {
	service   service.AttemptService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, validator *validator.Validate, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt endpoints to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Get("/quiz", h.start)
	router.Put("/answers", h.saveAnswer)
	router.Put("/comments", h.saveComment)
	router.Get("/remaining", h.remaining)
	router.Post("/submit", h.submit)

	router.Use("/ticker", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ticker", websocket.New(h.ticker))
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "student id missing")
	}

	attempt, err := h.service.Start(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz retrieved", attempt)
}

func (h *AttemptHandler) saveAnswer(c *fiber.Ctx) error {
	return h.saveDraft(c, false)
}

func (h *AttemptHandler) saveComment(c *fiber.Ctx) error {
	return h.saveDraft(c, true)
}

func (h *AttemptHandler) saveDraft(c *fiber.Ctx, comment bool) error {
	studentID := userIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "student id missing")
	}

	var payload dto.AnswerSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var err error
	if comment {
		err = h.service.SaveComment(c.Context(), studentID, payload)
	} else {
		err = h.service.SaveAnswer(c.Context(), studentID, payload)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "draft saved", fiber.Map{"question_id": payload.QuestionID})
}

func (h *AttemptHandler) remaining(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "student id missing")
	}

	remaining, err := h.service.Remaining(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "remaining time retrieved", remaining)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "student id missing")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz submitted", submission)
}

// ticker streams the countdown once per second until the attempt finishes or
// the client goes away.
func (h *AttemptHandler) ticker(conn *websocket.Conn) {
	defer conn.Close()

	studentID := websocketUserID(conn)
	if studentID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "student id missing"))
		return
	}

	h.logger.Debug().Str("student_id", studentID).Msg("ticker connected")

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for range ticker.C {
		remaining, err := h.service.Remaining(context.Background(), studentID)
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "attempt finished"))
			return
		}

		if err := conn.WriteJSON(remaining); err != nil {
			return
		}

		if remaining.Submitted || remaining.RemainingSeconds <= 0 {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "time expired"))
			return
		}
	}
}

func websocketUserID(conn *websocket.Conn) string {
	if v := conn.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
		return fmt.Sprint(v)
	}
	return ""
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no quiz assigned")
	case errors.Is(err, service.ErrAttemptNotStarted):
		return utils.SendError(c, fiber.StatusConflict, "attempt not started")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "quiz already submitted")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
