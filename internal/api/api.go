// internal/api/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/phibia/phibia-go/internal/classifier"
	"github.com/phibia/phibia-go/internal/conf"
	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
	"github.com/phibia/phibia-go/internal/logging"
	"github.com/phibia/phibia-go/internal/observability"
	"github.com/phibia/phibia-go/internal/security"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo       *echo.Echo
	DS         datastore.Interface
	Settings   *conf.Settings
	Classifier classifier.Classifier
	Tokens     *security.TokenService

	uploadPath     string
	speciesCache   *cache.Cache
	metrics        *observability.Metrics
	apiLogger      *slog.Logger
	apiLoggerClose func() error
}

// New creates the API controller and registers all routes on e.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	clf classifier.Classifier, tokens *security.TokenService,
	metrics *observability.Metrics) (*Controller, error) {

	uploadPath := settings.Upload.Path
	if uploadPath == "" {
		return nil, fmt.Errorf("upload.path must not be empty")
	}
	if !filepath.IsAbs(uploadPath) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory to resolve relative upload path: %w", err)
		}
		uploadPath = filepath.Join(workDir, uploadPath)
	}
	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", uploadPath, err)
	}

	apiLogger, closeLogger, err := logging.NewFileLogger(
		filepath.Join(settings.Log.Path, "api.log"), "api", slog.LevelDebug)
	if err != nil {
		// Keep serving without the file log rather than refusing to start.
		logging.Error("Failed to initialize API file logger, file logging disabled", "error", err)
		apiLogger = logging.NewDiscardLogger("api")
		closeLogger = func() error { return nil }
	}

	c := &Controller{
		Echo:           e,
		DS:             ds,
		Settings:       settings,
		Classifier:     clf,
		Tokens:         tokens,
		uploadPath:     uploadPath,
		speciesCache:   cache.New(speciesCacheTTL, speciesCacheTTL*2),
		metrics:        metrics,
		apiLogger:      apiLogger,
		apiLoggerClose: closeLogger,
	}

	c.initMiddleware()
	c.initRoutes()

	return c, nil
}

// initMiddleware installs the echo middleware stack.
func (c *Controller) initMiddleware() {
	c.Echo.Use(middleware.Recover())
	c.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			c.apiLogger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"ip", ctx.RealIP(),
				"error", v.Error,
			)
			return nil
		},
	}))
	c.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{c.Settings.WebServer.FrontendOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType},
		AllowCredentials: true,
	}))
}

// initRoutes registers all endpoints.
func (c *Controller) initRoutes() {
	c.Echo.GET("/", c.Health)

	// Core prediction pipeline. Identity is resolved inside the handler so
	// bad credentials degrade to guest instead of rejecting the request.
	c.Echo.POST("/predict", c.Predict)

	// Capture history, ownership enforced.
	c.Echo.GET("/audio", c.ListCaptures, c.RequireAuth)
	c.Echo.GET("/audio/:id", c.GetCapture, c.RequireAuth)
	c.Echo.DELETE("/audio/:id", c.DeleteCapture, c.RequireAuth)
	c.Echo.GET("/mapa", c.MapCaptures)

	// Species catalog.
	c.Echo.GET("/especies", c.ListSpecies)
	c.Echo.GET("/especies/:id", c.GetSpecies)

	// Accounts.
	c.Echo.POST("/register", c.Register)
	c.Echo.POST("/login", c.Login)
	c.Echo.POST("/logout", c.Logout, c.RequireAuth)
	c.Echo.GET("/verify-token", c.VerifyToken, c.RequireAuth)
	c.Echo.PUT("/perfil", c.UpdateProfile, c.RequireAuth)

	// Stored clips and metrics.
	c.Echo.GET("/uploads/:filename", c.ServeClip)
	c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
}

// Health answers the root liveness probe.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			logging.Error("Failed to close API log file", "error", err)
		}
	}
}

// ErrorResponse is the standard JSON shape for failures.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new error response with a correlation ID for log matching.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a unique identifier for error tracking.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	attrs := []any{
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		var ee *errors.EnhancedError
		if errors.As(err, &ee) {
			attrs = append(attrs, "category", ee.GetCategory())
		}
	}
	c.apiLogger.Error("API Error", attrs...)

	return ctx.JSON(code, errorResp)
}

// statusForError maps error categories onto HTTP status codes following the
// service error taxonomy.
func statusForError(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryValidation),
		errors.IsCategory(err, errors.CategoryLabelParsing),
		errors.IsCategory(err, errors.CategoryClassification),
		errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
