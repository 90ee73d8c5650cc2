// Package respond writes the JSON envelope shared by every API endpoint:
//
//	{"success": true, "data": ..., "message": ...}
//	{"success": false, "error": {"code": "...", "message": "...", "details": [...]}}
package respond

import (
	"github.com/gofiber/fiber/v3"
)

// Error codes returned to clients.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeUserExists         = "USER_EXISTS"
	CodeRoleExists         = "ROLE_EXISTS"
	CodeSystemRole         = "SYSTEM_ROLE"
	CodeHasUsers           = "HAS_USERS"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidID          = "INVALID_ID"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeInvalidPermission  = "INVALID_PERMISSION"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)

// Envelope is the top-level response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   *Body  `json:"error,omitempty"`
}

// Body describes a failed request.
type Body struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// OK writes a 200 response carrying data.
func OK(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

// Created writes a 201 response carrying data.
func Created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// Message writes a 200 response with a message and no data.
func Message(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: msg})
}

// Error writes a failure envelope with the given status.
func Error(c fiber.Ctx, status int, code, message string, details ...string) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Error: &Body{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
