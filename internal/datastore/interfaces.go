// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log/slog"

	"github.com/phibia/phibia-go/internal/conf"
	"github.com/phibia/phibia-go/internal/logging"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations the rest of the application is allowed to perform.
type Interface interface {
	Open() error
	Close() error

	// Users
	GetUserByID(id uint) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByName(name string) (User, error)
	CreateUser(user *User) error
	UpdateUser(user *User) error

	// Species catalog
	GetSpeciesByID(id uint) (Species, error)
	GetAllSpecies() ([]Species, error)

	// Locations
	FindOrCreateLocation(latitude, longitude float64) (Location, error)
	UnknownLocation() (Location, error)

	// Captures
	SaveCapture(capture *Capture) error
	SaveCaptureAt(capture *Capture, latitude, longitude float64) error
	GetCapture(id, userID uint) (Capture, error)
	GetUserCaptures(userID uint) ([]Capture, error)
	CapturesWithCoordinates() ([]Capture, error)
	DeleteCapture(id, userID uint) error
	SpeciesCaptureCounts() ([]SpeciesCaptureCount, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB     *gorm.DB // GORM database instance
	logger *slog.Logger
}

// New creates a new datastore instance based on the provided settings.
// The returned store still has to be opened by the caller; nothing here
// touches global state, the handle travels with the store.
func New(settings *conf.Settings) Interface {
	logger := logging.ForService("datastore")
	if logger == nil {
		logger = logging.NewDiscardLogger("datastore")
	}

	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{logger: logger},
			Settings:  settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{logger: logger},
			Settings:  settings,
		}
	default:
		// Settings validation rejects this, kept as a guard.
		return nil
	}
}
