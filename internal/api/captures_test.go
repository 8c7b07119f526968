package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
)

func testCapture(userID uint) datastore.Capture {
	return datastore.Capture{
		ID:           10,
		ClipName:     "b1946ac9.wav",
		OriginalName: "rana-nocturna.wav",
		Duration:     4.2,
		Confidence:   0.87,
		CapturedAt:   time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC),
		UserID:       userID,
		SpeciesID:    3,
		Species:      testSpecies(),
		Location:     testUnknownLocation(),
	}
}

func TestListCaptures(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	ds.On("GetUserByID", user.ID).Return(user, nil)
	ds.On("GetUserCaptures", user.ID).
		Return([]datastore.Capture{testCapture(user.ID)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/audio", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	audios, ok := body["audios"].([]any)
	require.True(t, ok)
	require.Len(t, audios, 1)

	entry := audios[0].(map[string]any)
	assert.Equal(t, "b1946ac9.wav", entry["archivo"])
	assert.Equal(t, "rana-nocturna.wav", entry["nombre_original"])
	assert.InDelta(t, 0.87, entry["confianza"], 1e-9)
	especie := entry["especie"].(map[string]any)
	assert.Equal(t, "Rhinella arenarum", especie["nombre_cientifico"])
}

func TestListCapturesEmpty(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	ds.On("GetUserByID", user.ID).Return(user, nil)
	ds.On("GetUserCaptures", user.ID).Return([]datastore.Capture{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/audio", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"audios":[]}`, rec.Body.String())
}

func TestGetCaptureHidesForeignRows(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	ds.On("GetUserByID", user.ID).Return(user, nil)
	// The store scopes the lookup by owner, someone else's capture comes
	// back as not found.
	ds.On("GetCapture", uint(10), user.ID).Return(datastore.Capture{},
		errors.Newf("capture 10 not found").Category(errors.CategoryNotFound).Build())

	req := httptest.NewRequest(http.MethodGet, "/audio/10", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCaptureInvalidID(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	ds.On("GetUserByID", user.ID).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/audio/abc", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCaptureRemovesFileAndRow(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	capture := testCapture(user.ID)

	clipPath := filepath.Join(c.uploadPath, capture.ClipName)
	require.NoError(t, os.WriteFile(clipPath, []byte("RIFF"), 0o644))

	ds.On("GetUserByID", user.ID).Return(user, nil)
	ds.On("GetCapture", capture.ID, user.ID).Return(capture, nil)
	ds.On("DeleteCapture", capture.ID, user.ID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/audio/10", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Audio deleted", decodeBody(t, rec.Body)["message"])
	assert.NoFileExists(t, clipPath)
	ds.AssertExpectations(t)
}

func TestDeleteCaptureToleratesMissingFile(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	capture := testCapture(user.ID)

	ds.On("GetUserByID", user.ID).Return(user, nil)
	ds.On("GetCapture", capture.ID, user.ID).Return(capture, nil)
	ds.On("DeleteCapture", capture.ID, user.ID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/audio/10", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteCaptureDatabaseFailure(t *testing.T) {
	c, ds, _ := newTestController(t)
	user := testUser()
	capture := testCapture(user.ID)

	ds.On("GetUserByID", user.ID).Return(user, nil)
	ds.On("GetCapture", capture.ID, user.ID).Return(capture, nil)
	ds.On("DeleteCapture", capture.ID, user.ID).
		Return(errors.Newf("constraint violation").Category(errors.CategoryDatabase).Build())

	req := httptest.NewRequest(http.MethodDelete, "/audio/10", http.NoBody)
	req.AddCookie(authCookie(t, c, user.ID))
	rec := doRequest(c, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMapCapturesIsPublic(t *testing.T) {
	c, ds, _ := newTestController(t)
	capture := testCapture(2)
	capture.Location = datastore.Location{
		ID: 5, Description: datastore.UserLocationDesc, Latitude: -34.6, Longitude: -58.4,
	}
	ds.On("CapturesWithCoordinates").Return([]datastore.Capture{capture}, nil)

	rec := doRequest(c, httptest.NewRequest(http.MethodGet, "/mapa", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	capturas, ok := body["capturas"].([]any)
	require.True(t, ok)
	require.Len(t, capturas, 1)
	ubicacion := capturas[0].(map[string]any)["ubicacion"].(map[string]any)
	assert.InDelta(t, -34.6, ubicacion["latitud"], 1e-9)
}
