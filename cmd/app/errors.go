package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tankharsh/photocap/internal/services"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/labstack/echo/v4"
)

const msgInternal = "Internal server error"

type errorResponse struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// mapError turns a handler error into a status and a client-safe body.
func mapError(err error) (int, errorResponse) {
	var verr *validation.Error
	var herr *echo.HTTPError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: verr.Fields}
	// before ErrInvalidCredentials, which it wraps
	case errors.Is(err, services.ErrCurrentPasswordMismatch):
		return http.StatusBadRequest, errorResponse{Message: "Current password is incorrect"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"}
	case errors.Is(err, services.ErrAccountDeactivated):
		return http.StatusUnauthorized, errorResponse{Message: "Account is deactivated"}
	case errors.Is(err, services.ErrDuplicateIdentity):
		return http.StatusConflict, errorResponse{Message: "User with this email already exists"}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: "Resource not found"}
	case errors.Is(err, services.ErrInvalidVerificationToken):
		return http.StatusBadRequest, errorResponse{Message: "Invalid or expired verification token"}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok || herr.Code >= http.StatusInternalServerError {
			msg = http.StatusText(herr.Code)
		}
		return herr.Code, errorResponse{Message: msg}
	default:
		return http.StatusInternalServerError, errorResponse{Message: msgInternal}
	}
}

// httpErrorHandler is the single error boundary. Causes of 5xx responses are
// logged and never sent to the client.
func httpErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := mapError(err)
		if status >= http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("failed to write error response", "error", err)
		}
	}
}

// bindAndValidate decodes the request body into req and runs its validation
// tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return c.Validate(req)
}
