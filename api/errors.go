package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"gaugetrack.GO/core/faults"
)

// WriteError maps the engine's error taxonomy onto HTTP responses.
// Validation details are structured so callers can render actionable
// messages; persistence faults stay opaque.
func WriteError(c echo.Context, err error) error {
	var v *faults.ValidationError
	if errors.As(err, &v) {
		status := http.StatusUnprocessableEntity
		switch v.Kind {
		case faults.KindAlreadyPaired, faults.KindIdentifierReused:
			status = http.StatusConflict
		case faults.KindNotFound:
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{
			"error":    v.Message,
			"kind":     v.Kind,
			"field":    v.Field,
			"expected": v.Expected,
			"actual":   v.Actual,
		})
	}
	var cfg *faults.ConfigurationError
	if errors.As(err, &cfg) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": cfg.Message, "kind": "configuration"})
	}
	var transient *faults.TransientError
	if errors.As(err, &transient) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary storage contention, please retry", "kind": "transient"})
	}
	log.Printf("api: unexpected failure: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "kind": "persistence"})
}
