// species.go: species catalog accessors, read-only at request time
package datastore

import (
	"github.com/phibia/phibia-go/internal/errors"
	"gorm.io/gorm"
)

// GetSpeciesByID retrieves one catalog entry by its identifier.
func (ds *DataStore) GetSpeciesByID(id uint) (Species, error) {
	var species Species
	if err := ds.DB.First(&species, id).Error; err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return Species{}, errors.New(err).
			Category(category).
			Component("datastore").
			Context("entity", "species").
			Context("species_id", id).
			Build()
	}
	return species, nil
}

// GetAllSpecies returns the full catalog ordered by scientific name.
func (ds *DataStore) GetAllSpecies() ([]Species, error) {
	var species []Species
	if err := ds.DB.Order("scientific_name").Find(&species).Error; err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "get_all_species").
			Build()
	}
	return species, nil
}
