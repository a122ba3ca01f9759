package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint returns. Grading results,
// assignments and errors all share this shape so clients parse one format.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

func send(c *fiber.Ctx, status int, success bool, message string, data interface{}) error {
	return c.Status(status).JSON(APIResponse{
		Success: success,
		Data:    data,
		Message: message,
	})
}

// SendSuccess writes a 200 response with the given payload.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus writes a success payload with an explicit status,
// used for 201 on assignment creation.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}
	return send(c, status, true, message, data)
}

// SendError writes an error response. Data is always omitted on errors.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}
	return send(c, status, false, message, nil)
}
