package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

// ErrNilDeps is returned by Init when the router or dependencies are missing.
var ErrNilDeps = errors.New(ErrNilDepsFatalLogMsg)

// Error is a client error with a fixed status and code.
type Error struct {
	Status  int
	Code    string
	Message string
	Details []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// BadRequest returns a 400 error with the given code.
func BadRequest(code, message string, details ...string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Code: code, Message: message, Details: details}
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return &Error{Status: fiber.StatusNotFound, Code: respond.CodeNotFound, Message: message}
}

// domainErrors maps service sentinels to client errors. Order matters for wrapped errors.
var domainErrors = []struct { //nolint:gochecknoglobals
	target error
	status int
	code   string
	msg    string
}{
	{auth.ErrUserNameOrEmailExists, fiber.StatusConflict, respond.CodeUserExists, "User already exists with this email or username"},
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized, respond.CodeInvalidCredentials, "Invalid email or password"},
	{auth.ErrUserNotFound, fiber.StatusNotFound, respond.CodeNotFound, "User not found"},
	{auth.ErrRoleNotFound, fiber.StatusNotFound, respond.CodeNotFound, "Role not found"},
	{auth.ErrRoleNameExists, fiber.StatusConflict, respond.CodeRoleExists, "Role name already exists"},
	{auth.ErrSystemRoleProtected, fiber.StatusBadRequest, respond.CodeSystemRole, "System roles cannot be modified"},
	{auth.ErrUnknownPermission, fiber.StatusBadRequest, respond.CodeInvalidPermission, "Unknown permission ID"},
	{auth.ErrNoRoleAssigned, fiber.StatusForbidden, respond.CodeForbidden, "No role assigned"},
}

// ErrorHandler renders every error returned by a handler as a JSON envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	var (
		he       *Error
		fe       *fiber.Error
		verrs    validator.ValidationErrors
		denied   *auth.PermissionDeniedError
		response = func(status int, code, msg string, details ...string) error {
			return respond.Error(c, status, code, msg, details...)
		}
	)

	switch {
	case errors.As(err, &he):
		return response(he.Status, he.Code, he.Message, he.Details...)
	case errors.As(err, &verrs):
		return response(fiber.StatusBadRequest, respond.CodeValidation, "Validation failed", validationDetails(verrs)...)
	case errors.As(err, &denied):
		return response(fiber.StatusForbidden, respond.CodeForbidden, denied.Error())
	case errors.Is(err, auth.ErrRoleInUse):
		return response(fiber.StatusBadRequest, respond.CodeHasUsers, err.Error())
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return response(m.status, m.code, m.msg)
		}
	}

	if errors.As(err, &fe) {
		return response(fe.Code, codeForStatus(fe.Code), fe.Message)
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

	return response(fiber.StatusInternalServerError, respond.CodeInternal, "Internal Server Error")
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return respond.CodeUnauthorized
	case fiber.StatusForbidden:
		return respond.CodeForbidden
	case fiber.StatusNotFound:
		return respond.CodeNotFound
	case fiber.StatusTooManyRequests:
		return respond.CodeTooManyRequests
	case fiber.StatusInternalServerError:
		return respond.CodeInternal
	}

	if status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
		return respond.CodeValidation
	}

	return respond.CodeInternal
}

func validationDetails(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		detail := fe.Field() + " failed on " + fe.Tag()
		if fe.Param() != "" {
			detail += "=" + fe.Param()
		}

		out = append(out, detail)
	}

	return out
}

// ID parses the :id route parameter as a positive integer.
func ID(c fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(ParamID), 10, 64)
	if err != nil || id == 0 {
		return 0, BadRequest(respond.CodeInvalidID, "Invalid ID")
	}

	return id, nil
}

// UintID parses the :id route parameter for tables keyed by uint, rejecting
// values that do not fit the platform's uint.
func UintID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params(ParamID), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, BadRequest(respond.CodeInvalidID, "Invalid ID")
	}

	return uint(id), nil
}

// BindJSON decodes the request body into out and validates it.
func BindJSON(c fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return BadRequest(respond.CodeValidation, "Malformed JSON body")
	}

	return v.Struct(out) //nolint:wrapcheck
}
