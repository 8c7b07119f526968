// predict.go: the prediction ingestion pipeline. Identity → upload →
// classifier → label parsing → catalog lookup → location → commit, with the
// cleanup invariant that no uploaded file survives a failed request.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/phibia/phibia-go/internal/classifier"
	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
)

// coordinates holds the optional form coordinate pair.
type coordinates struct {
	valid     bool
	latitude  float64
	longitude float64
}

// Predict handles POST /predict.
func (c *Controller) Predict(ctx echo.Context) error {
	// Stage 1: identity. Bad or missing credentials resolve to guest, a
	// missing guest row is fatal.
	user, err := c.resolveIdentity(ctx)
	if err != nil {
		c.countPredictionError("identity")
		return c.HandleError(ctx, err, "Guest account is not configured", http.StatusInternalServerError)
	}

	// Stage 2: upload.
	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		c.countPredictionError("upload")
		return c.HandleError(ctx, err, "No audio file was sent", http.StatusBadRequest)
	}

	coords, err := parseCoordinates(ctx)
	if err != nil {
		c.countPredictionError("coordinates")
		return c.HandleError(ctx, err, "Invalid coordinates", http.StatusBadRequest)
	}

	upload, err := c.saveUpload(fileHeader)
	if err != nil {
		c.countPredictionError("upload")
		return c.HandleError(ctx, err, "Could not store the audio file", statusForError(err))
	}

	// From here on every failure must remove the stored file before the
	// response leaves the handler.

	// Stage 3: classification, bounded by the configured deadline.
	start := time.Now()
	prediction, err := c.Classifier.Predict(ctx.Request().Context(), upload.Path)
	if c.metrics != nil {
		c.metrics.ClassifierDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.removeUpload(upload)
		c.countPredictionError("classify")
		return c.HandleError(ctx, err, "Audio could not be classified", statusForError(err))
	}

	// Stage 4: label parsing. Failure here is a model/catalog contract
	// violation, reported with the raw label for diagnosis.
	parsed, err := classifier.ParseLabel(prediction.Label)
	if err != nil {
		c.removeUpload(upload)
		c.countPredictionError("parse")
		return c.HandleError(ctx, err, "Classifier returned a malformed label", http.StatusBadRequest)
	}

	// Stage 5: catalog lookup.
	species, err := c.DS.GetSpeciesByID(parsed.SpeciesID)
	if err != nil {
		c.removeUpload(upload)
		c.countPredictionError("catalog")
		if errors.IsNotFound(err) {
			notFound := errors.Newf("species %d (%s) is not in the catalog",
				parsed.SpeciesID, parsed.ScientificName).
				Category(errors.CategoryNotFound).
				Component("api").
				Context("species_id", parsed.SpeciesID).
				Context("scientific_name", parsed.ScientificName).
				Build()
			return c.HandleError(ctx, notFound, "Predicted species is not in the catalog", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Species lookup failed", http.StatusInternalServerError)
	}

	// Stages 6 and 7: location resolution and the transactional commit.
	capture := datastore.Capture{
		ClipName:     upload.ClipName,
		OriginalName: upload.OriginalName,
		Duration:     upload.Duration,
		Confidence:   prediction.Confidence,
		CapturedAt:   time.Now(),
		UserID:       user.ID,
		SpeciesID:    species.ID,
	}

	if coords.valid {
		err = c.DS.SaveCaptureAt(&capture, coords.latitude, coords.longitude)
	} else {
		var unknown datastore.Location
		unknown, err = c.DS.UnknownLocation()
		if err == nil {
			capture.LocationID = unknown.ID
			capture.Location = unknown
			err = c.DS.SaveCapture(&capture)
		}
	}
	if err != nil {
		c.removeUpload(upload)
		c.countPredictionError("commit")
		return c.HandleError(ctx, err, "Could not save the capture", http.StatusInternalServerError)
	}

	capture.Species = species
	if c.metrics != nil {
		c.metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	}
	c.apiLogger.Info("prediction stored",
		"capture_id", capture.ID,
		"species_id", species.ID,
		"user_id", user.ID,
		"confidence", prediction.Confidence,
	)

	return ctx.JSON(http.StatusOK, PredictionResponse{
		Prediccion:  prediction.Label,
		Confianza:   prediction.Confidence,
		EspecieInfo: newSpeciesInfo(&species),
		AudioID:     capture.ID,
		Ubicacion:   newLocationInfo(&capture.Location),
	})
}

// parseCoordinates reads the optional latitud/longitud form fields. Both or
// neither must be present; one without the other is a client error.
func parseCoordinates(ctx echo.Context) (coordinates, error) {
	latStr := ctx.FormValue("latitud")
	lonStr := ctx.FormValue("longitud")

	if latStr == "" && lonStr == "" {
		return coordinates{}, nil
	}
	if latStr == "" || lonStr == "" {
		return coordinates{}, errors.Newf("latitud and longitud must be sent together").
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return coordinates{}, invalidCoordinate("latitud", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return coordinates{}, invalidCoordinate("longitud", lonStr)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return coordinates{}, errors.Newf("coordinates out of range: %f, %f", lat, lon).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}

	return coordinates{valid: true, latitude: lat, longitude: lon}, nil
}

func invalidCoordinate(field, value string) error {
	return errors.Newf("%s is not a number: %q", field, value).
		Category(errors.CategoryValidation).
		Component("api").
		Context("field", field).
		Build()
}

func (c *Controller) countPredictionError(stage string) {
	if c.metrics != nil {
		c.metrics.PredictionErrors.WithLabelValues(stage).Inc()
		c.metrics.PredictionsTotal.WithLabelValues("error").Inc()
	}
}
