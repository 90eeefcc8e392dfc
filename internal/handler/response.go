package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/phlink/internal/domain"
)

// ErrorBody is the JSON shape for failed requests. Details carries the raw
// provider payload (or the missing configuration keys) on 500s so upstream
// failures stay diagnosable from the response alone.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HTTPErrorHandler is the global error handler for echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"error", err,
		)
	}

	if jsonErr := c.JSON(status, body); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error) (int, ErrorBody) {
	var (
		echoErr       *echo.HTTPError
		validationErr *domain.ValidationError
		configErr     *domain.ConfigError
		upstreamErr   *domain.UpstreamError
		storageErr    *domain.StorageError
	)

	switch {
	case errors.As(err, &echoErr):
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, ErrorBody{Error: msg}

	case errors.Is(err, domain.ErrMissingParameter),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest, ErrorBody{Error: err.Error()}

	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorBody{Error: validationErr.Error()}

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorBody{Error: "authentication is required"}

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: "the requested resource was not found"}

	case errors.As(err, &configErr):
		return http.StatusInternalServerError, ErrorBody{Error: "missing environment variables", Details: configErr.Missing}

	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, ErrorBody{Error: err.Error(), Details: rawDetails(upstreamErr.Payload)}

	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, ErrorBody{Error: "failed to store credential"}

	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal server error"}
	}
}

// rawDetails keeps JSON provider payloads as JSON in the response body
// instead of double-encoding them into a string.
func rawDetails(payload string) any {
	if payload == "" {
		return nil
	}
	if json.Valid([]byte(payload)) {
		return json.RawMessage(payload)
	}
	return payload
}
