// species.go: species catalog endpoints
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/phibia/phibia-go/internal/errors"
)

// speciesCacheTTL bounds how stale the cached catalog list may get. The
// catalog is read-only at request time, so a short TTL only matters after
// out-of-band edits.
const speciesCacheTTL = 5 * time.Minute

const speciesCacheKey = "all_species"

// ListSpecies handles GET /especies.
func (c *Controller) ListSpecies(ctx echo.Context) error {
	if cached, found := c.speciesCache.Get(speciesCacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	species, err := c.DS.GetAllSpecies()
	if err != nil {
		return c.HandleError(ctx, err, "Could not load species catalog", http.StatusInternalServerError)
	}

	infos := make([]SpeciesInfo, 0, len(species))
	for i := range species {
		infos = append(infos, newSpeciesInfo(&species[i]))
	}
	payload := map[string]any{"especies": infos}
	c.speciesCache.Set(speciesCacheKey, payload, speciesCacheTTL)

	return ctx.JSON(http.StatusOK, payload)
}

// GetSpecies handles GET /especies/:id.
func (c *Controller) GetSpecies(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	species, err := c.DS.GetSpeciesByID(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Could not load species", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, newSpeciesInfo(&species))
}
