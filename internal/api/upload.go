// upload.go: upload receiver for the predict pipeline
package api

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/phibia/phibia-go/internal/errors"
)

// storedUpload describes a clip persisted to the upload directory.
type storedUpload struct {
	ClipName     string  // collision-resistant stored name
	OriginalName string  // client-supplied name, metadata only
	Path         string  // absolute path on disk
	Size         int64   // bytes written
	Duration     float64 // seconds, 0 when the probe failed
}

// saveUpload validates the multipart file and writes it to the upload
// directory under a generated storage key. The client-supplied name is never
// used for the file on disk, so concurrent uploads of equally named files
// cannot overwrite each other.
func (c *Controller) saveUpload(fileHeader *multipart.FileHeader) (*storedUpload, error) {
	if fileHeader.Filename == "" {
		return nil, errors.Newf("uploaded file has an empty filename").
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("api").
			Context("original_name", fileHeader.Filename).
			Build()
	}
	defer src.Close()

	if err := os.MkdirAll(c.uploadPath, 0o755); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("api").
			Build()
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	clipName := uuid.NewString() + ext
	dstPath := filepath.Join(c.uploadPath, clipName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("api").
			Context("clip", clipName).
			Build()
	}

	size, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dstPath)
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("api").
			Context("clip", clipName).
			Build()
	}

	upload := &storedUpload{
		ClipName:     clipName,
		OriginalName: fileHeader.Filename,
		Path:         dstPath,
		Size:         size,
		Duration:     probeWavDuration(dstPath),
	}
	if c.metrics != nil {
		c.metrics.UploadBytes.Observe(float64(size))
	}
	return upload, nil
}

// removeUpload deletes a stored clip. Used on every pipeline failure after
// the file was written; no uploaded file may survive a request that did not
// produce a capture record.
func (c *Controller) removeUpload(upload *storedUpload) {
	if upload == nil {
		return
	}
	if err := os.Remove(upload.Path); err != nil && !os.IsNotExist(err) {
		c.apiLogger.Error("Failed to remove orphaned upload",
			"clip", upload.ClipName,
			"error", err)
	}
}

// probeWavDuration reads the clip length from the WAV header. Best effort:
// non-WAV content or a broken header yields 0 without failing the request.
func probeWavDuration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	duration, err := decoder.Duration()
	if err != nil {
		return 0
	}
	return duration.Seconds()
}
