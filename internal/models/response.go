package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the wire format for every API response.
type Envelope struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Respond writes a success envelope with the given status and payload.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// RespondWithError writes an error envelope. The status is derived from the
// error's code; non-AppError values are reported as internal errors without
// leaking their text to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	body := &ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	return c.Status(appErr.HTTPStatus()).JSON(Envelope{
		Success:   false,
		Error:     body,
		Timestamp: time.Now().UTC(),
	})
}
