// captures.go: capture persistence, the transactional core of the predict pipeline
package datastore

import (
	"github.com/phibia/phibia-go/internal/errors"
	"gorm.io/gorm"
)

// SaveCapture stores a capture whose location is already resolved (the
// unknown-location path) in a single transaction.
func (ds *DataStore) SaveCapture(capture *Capture) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(capture).Error
	})
	if err != nil {
		return captureSaveError(err)
	}
	return nil
}

// SaveCaptureAt resolves the location for the given coordinate pair and
// stores the capture referencing it, all inside one transaction. A failed
// commit leaves neither a location created for this call nor a capture row
// behind, making capture creation all-or-nothing.
func (ds *DataStore) SaveCaptureAt(capture *Capture, latitude, longitude float64) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		location, err := findOrCreateLocationTx(tx, latitude, longitude)
		if err != nil {
			return err
		}
		capture.LocationID = location.ID
		capture.Location = location
		return tx.Create(capture).Error
	})
	if err != nil {
		return captureSaveError(err)
	}
	return nil
}

// GetCapture retrieves one capture scoped to its owner. A capture belonging
// to another user is indistinguishable from a nonexistent one.
func (ds *DataStore) GetCapture(id, userID uint) (Capture, error) {
	var capture Capture
	err := ds.DB.Preload("Species").Preload("Location").
		Where("id = ? AND user_id = ?", id, userID).
		First(&capture).Error
	if err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return Capture{}, errors.New(err).
			Category(category).
			Component("datastore").
			Context("entity", "capture").
			Context("capture_id", id).
			Build()
	}
	return capture, nil
}

// GetUserCaptures lists a user's captures, newest first.
func (ds *DataStore) GetUserCaptures(userID uint) ([]Capture, error) {
	var captures []Capture
	err := ds.DB.Preload("Species").Preload("Location").
		Where("user_id = ?", userID).
		Order("captured_at DESC").
		Find(&captures).Error
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "get_user_captures").
			Build()
	}
	return captures, nil
}

// CapturesWithCoordinates returns captures recorded at a real coordinate
// pair, for the map view. The unknown-location sentinel is excluded.
func (ds *DataStore) CapturesWithCoordinates() ([]Capture, error) {
	var captures []Capture
	err := ds.DB.Preload("Species").Preload("Location").
		Joins("JOIN locations ON locations.id = captures.location_id").
		Where("locations.description <> ?", UnknownLocationDesc).
		Order("captured_at DESC").
		Find(&captures).Error
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "captures_with_coordinates").
			Build()
	}
	return captures, nil
}

// DeleteCapture removes a capture scoped to its owner. Deleting a capture
// that does not exist, or that belongs to someone else, reports not-found.
func (ds *DataStore) DeleteCapture(id, userID uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&Capture{})
		if result.Error != nil {
			return errors.New(result.Error).
				Category(errors.CategoryDatabase).
				Component("datastore").
				Context("operation", "delete_capture").
				Context("capture_id", id).
				Build()
		}
		if result.RowsAffected == 0 {
			return errors.Newf("capture %d not found for user %d", id, userID).
				Category(errors.CategoryNotFound).
				Component("datastore").
				Context("capture_id", id).
				Build()
		}
		return nil
	})
}

// SpeciesCaptureCounts aggregates captures per species for the dashboard.
func (ds *DataStore) SpeciesCaptureCounts() ([]SpeciesCaptureCount, error) {
	var counts []SpeciesCaptureCount
	err := ds.DB.Model(&Capture{}).
		Select("captures.species_id AS species_id, species.scientific_name, species.common_name, COUNT(captures.id) AS count").
		Joins("JOIN species ON species.id = captures.species_id").
		Group("captures.species_id, species.scientific_name, species.common_name").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "species_capture_counts").
			Build()
	}
	return counts, nil
}

func captureSaveError(err error) error {
	return errors.New(err).
		Category(errors.CategoryDatabase).
		Component("datastore").
		Context("operation", "save_capture").
		Build()
}
