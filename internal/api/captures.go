// captures.go: capture history endpoints
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/phibia/phibia-go/internal/errors"
)

// ListCaptures handles GET /audio, returning the caller's capture history.
func (c *Controller) ListCaptures(ctx echo.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
	}

	captures, err := c.DS.GetUserCaptures(user.ID)
	if err != nil {
		return c.HandleError(ctx, err, "Could not load captures", http.StatusInternalServerError)
	}

	infos := make([]CaptureInfo, 0, len(captures))
	for i := range captures {
		infos = append(infos, newCaptureInfo(&captures[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"audios": infos})
}

// GetCapture handles GET /audio/:id. A capture owned by someone else is
// indistinguishable from a nonexistent one.
func (c *Controller) GetCapture(ctx echo.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid capture id", http.StatusBadRequest)
	}

	capture, err := c.DS.GetCapture(id, user.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Capture not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Could not load capture", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, newCaptureInfo(&capture))
}

// DeleteCapture handles DELETE /audio/:id. The clip file is removed best
// effort before the row; a file that is already gone never fails the request,
// a database failure does.
func (c *Controller) DeleteCapture(ctx echo.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid capture id", http.StatusBadRequest)
	}

	capture, err := c.DS.GetCapture(id, user.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Capture not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Could not load capture", http.StatusInternalServerError)
	}

	clipPath := filepath.Join(c.uploadPath, capture.ClipName)
	if err := os.Remove(clipPath); err != nil && !os.IsNotExist(err) {
		c.apiLogger.Warn("Failed to remove clip file, continuing with row deletion",
			"clip", capture.ClipName,
			"error", err)
	}

	if err := c.DS.DeleteCapture(id, user.ID); err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Capture not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Could not delete capture", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.CapturesDeleted.Inc()
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Audio deleted"})
}

// MapCaptures handles GET /mapa, returning captures with real coordinates
// for the map view.
func (c *Controller) MapCaptures(ctx echo.Context) error {
	captures, err := c.DS.CapturesWithCoordinates()
	if err != nil {
		return c.HandleError(ctx, err, "Could not load map data", http.StatusInternalServerError)
	}

	infos := make([]CaptureInfo, 0, len(captures))
	for i := range captures {
		infos = append(infos, newCaptureInfo(&captures[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"capturas": infos})
}

func parseIDParam(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.Newf("id %q is not a positive integer", ctx.Param("id")).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}
	return uint(id), nil
}
