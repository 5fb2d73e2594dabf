package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fleetdash/internal/engine"
	"fleetdash/internal/export"
	"fleetdash/internal/render"
)

// writeError maps domain errors to status codes. Unknown errors are passed to
// echo's error handler.
func writeError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := 0
	switch {
	case errors.Is(err, engine.ErrNoDataset):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrMissingRequiredColumn), errors.Is(err, render.ErrNotEnoughData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, engine.ErrInvalidRange), errors.Is(err, export.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, ErrStaleDataset):
		status = http.StatusConflict
	default:
		return err
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
