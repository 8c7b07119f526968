package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/phibia/phibia-go/internal/conf"
	"github.com/phibia/phibia-go/internal/errors"
	"github.com/phibia/phibia-go/internal/logging"
)

// Config holds the model server connection settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultConfig returns sensible client defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint: "http://localhost:8501/predict",
		Timeout:  30 * time.Second,
	}
}

// ConfigFromSettings maps the application settings onto a client config.
func ConfigFromSettings(settings *conf.ClassifierSettings) Config {
	cfg := DefaultConfig()
	if settings.Endpoint != "" {
		cfg.Endpoint = settings.Endpoint
	}
	if settings.Timeout > 0 {
		cfg.Timeout = time.Duration(settings.Timeout) * time.Second
	}
	return cfg
}

// Client calls the model server over HTTP. It implements Classifier.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// predictResponse is the wire format the model server answers with.
type predictResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// NewClient creates a new model server client.
func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, errors.Newf("classifier endpoint is required").
			Category(errors.CategoryConfiguration).
			Component("classifier").
			Build()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	logger := logging.ForService("classifier")
	if logger == nil {
		logger = logging.NewDiscardLogger("classifier")
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			// The per-request context carries the hard deadline; this is a
			// backstop for calls made without one.
			Timeout: config.Timeout + 5*time.Second,
		},
		logger: logger,
	}, nil
}

// Predict uploads the audio file to the model server and decodes its answer.
// The call is bounded by the configured timeout; hitting it is reported as a
// timeout error, distinct from a classification failure the model reports.
func (c *Client) Predict(ctx context.Context, audioPath string) (Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, contentType, err := buildMultipartBody(audioPath)
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return Prediction{}, errors.New(err).
			Category(errors.CategoryNetwork).
			Component("classifier").
			Build()
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Prediction{}, errors.Newf("classifier did not answer within %s", c.config.Timeout).
				Category(errors.CategoryTimeout).
				Component("classifier").
				Context("timeout_seconds", c.config.Timeout.Seconds()).
				Build()
		}
		return Prediction{}, errors.New(err).
			Category(errors.CategoryNetwork).
			Component("classifier").
			Build()
	}
	defer resp.Body.Close()

	c.logger.Debug("classifier request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Prediction{}, errors.New(err).
			Category(errors.CategoryNetwork).
			Component("classifier").
			Build()
	}

	var decoded predictResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Prediction{}, errors.Newf("classifier answered with undecodable body: %w", err).
			Category(errors.CategoryClassification).
			Component("classifier").
			Context("status", resp.StatusCode).
			Build()
	}

	if resp.StatusCode != http.StatusOK || decoded.Error != "" {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return Prediction{}, errors.Newf("classifier rejected audio: %s", msg).
			Category(errors.CategoryClassification).
			Component("classifier").
			Context("status", resp.StatusCode).
			Build()
	}

	return Prediction{
		Label:      decoded.Label,
		Confidence: roundConfidence(decoded.Confidence),
	}, nil
}

// buildMultipartBody reads the audio file into a multipart form body.
func buildMultipartBody(audioPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", errors.New(err).
			Category(errors.CategoryFileIO).
			Component("classifier").
			Context("file", filepath.Base(audioPath)).
			Build()
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", errors.New(err).
			Category(errors.CategoryFileIO).
			Component("classifier").
			Build()
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", errors.New(err).
			Category(errors.CategoryFileIO).
			Component("classifier").
			Context("file", filepath.Base(audioPath)).
			Build()
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.New(err).
			Category(errors.CategoryFileIO).
			Component("classifier").
			Build()
	}

	return body, writer.FormDataContentType(), nil
}
