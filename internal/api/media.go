// media.go: serves stored clips from the upload directory
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// safeFilenamePattern defines the acceptable characters for stored clip names.
var safeFilenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// validateClipPath ensures a requested file resolves inside the upload
// directory and carries a safe name.
func (c *Controller) validateClipPath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("empty filename")
	}
	if !safeFilenamePattern.MatchString(filename) {
		return "", fmt.Errorf("invalid filename characters")
	}

	// Sanitize the filename to prevent path traversal
	filename = filepath.Base(filename)
	fullPath := filepath.Join(c.uploadPath, filename)

	absUploadPath, err := filepath.Abs(c.uploadPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload path: %w", err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	if !strings.HasPrefix(absFullPath, absUploadPath+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return fullPath, nil
}

// ServeClip handles GET /uploads/:filename.
func (c *Controller) ServeClip(ctx echo.Context) error {
	filename := ctx.Param("filename")

	fullPath, err := c.validateClipPath(filename)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid file request", http.StatusBadRequest)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return c.HandleError(ctx, err, "Audio file not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error accessing audio file", http.StatusInternalServerError)
	}

	return ctx.File(fullPath)
}
