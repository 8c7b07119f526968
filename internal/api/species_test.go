package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
)

func TestListSpeciesServesFromCache(t *testing.T) {
	c, ds, _ := newTestController(t)

	ds.On("GetAllSpecies").Return([]datastore.Species{testSpecies()}, nil).Once()

	for i := 0; i < 3; i++ {
		rec := doRequest(c, httptest.NewRequest(http.MethodGet, "/especies", http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec.Body)
		especies, ok := body["especies"].([]any)
		require.True(t, ok)
		require.Len(t, especies, 1)
		assert.Equal(t, "Rhinella arenarum",
			especies[0].(map[string]any)["nombre_cientifico"])
	}

	// Only the first request may hit the store.
	ds.AssertNumberOfCalls(t, "GetAllSpecies", 1)
}

func TestGetSpecies(t *testing.T) {
	c, ds, _ := newTestController(t)
	ds.On("GetSpeciesByID", uint(3)).Return(testSpecies(), nil)

	rec := doRequest(c, httptest.NewRequest(http.MethodGet, "/especies/3", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	assert.Equal(t, "Rhinella arenarum", body["nombre_cientifico"])
	assert.Equal(t, "Sapo común", body["nombre_comun"])
}

func TestGetSpeciesNotFound(t *testing.T) {
	c, ds, _ := newTestController(t)
	ds.On("GetSpeciesByID", uint(99)).Return(datastore.Species{},
		errors.Newf("species 99 not found").Category(errors.CategoryNotFound).Build())

	rec := doRequest(c, httptest.NewRequest(http.MethodGet, "/especies/99", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSpeciesInvalidID(t *testing.T) {
	c, ds, _ := newTestController(t)

	rec := doRequest(c, httptest.NewRequest(http.MethodGet, "/especies/abc", http.NoBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ds.AssertNotCalled(t, "GetSpeciesByID", mock.Anything)
}
