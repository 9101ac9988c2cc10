// Package response writes the JSON envelopes every endpoint shares:
//
//	{"status":"success","message":...,"data":...,"metadata":...}
//	{"status":"error","error":{"message":...,"statusCode":...,"details":...}}
package response

import (
	"github.com/gofiber/fiber/v2"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// SuccessBody is the success envelope.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

func success(c *fiber.Ctx, code int, message string, data, metadata interface{}) error {
	if metadata == nil {
		metadata = fiber.Map{}
	}
	return c.Status(code).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Success sends 200.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return success(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated sends 201.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return success(c, fiber.StatusCreated, message, data, metadata)
}

// List sends 200 with items under data[key] and their count in metadata.
func List[T any](c *fiber.Ctx, message, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return success(c, fiber.StatusOK, message, fiber.Map{key: items}, fiber.Map{"count": len(items)})
}

// Error sends statusCode with the error envelope.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = fiber.Map{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusBadRequest, nil)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusNotFound, nil)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusConflict, nil)
}

// Internal hides the cause behind a generic 500; callers log it first.
func Internal(c *fiber.Ctx) error {
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
