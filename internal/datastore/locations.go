// locations.go: location find-or-create accessors
package datastore

import (
	"github.com/phibia/phibia-go/internal/errors"
	"gorm.io/gorm"
)

// FindOrCreateLocation returns the location with the exact coordinate pair,
// creating it when absent. Repeated identical calls never produce duplicate
// rows after the first creation; two near-simultaneous calls with the same
// pair may still race at the database level, which is accepted.
func (ds *DataStore) FindOrCreateLocation(latitude, longitude float64) (Location, error) {
	return findOrCreateLocationTx(ds.DB, latitude, longitude)
}

// UnknownLocation returns the sentinel row reused when no coordinates are
// supplied, creating it if a migration has not seeded it yet.
func (ds *DataStore) UnknownLocation() (Location, error) {
	var location Location
	err := ds.DB.Where(&Location{Description: UnknownLocationDesc}).
		FirstOrCreate(&location, Location{Description: UnknownLocationDesc}).Error
	if err != nil {
		return Location{}, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "unknown_location").
			Build()
	}
	return location, nil
}

// findOrCreateLocationTx performs the lookup-or-create inside the given
// handle so capture creation can run it within its own transaction.
func findOrCreateLocationTx(tx *gorm.DB, latitude, longitude float64) (Location, error) {
	var location Location
	err := tx.Where("latitude = ? AND longitude = ? AND description = ?",
		latitude, longitude, UserLocationDesc).First(&location).Error
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Location{}, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "find_location").
			Build()
	}

	location = Location{
		Description: UserLocationDesc,
		Latitude:    latitude,
		Longitude:   longitude,
	}
	if err := tx.Create(&location).Error; err != nil {
		return Location{}, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_location").
			Build()
	}
	return location, nil
}
