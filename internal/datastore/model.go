// model.go this code defines the data model for the application
package datastore

import "time"

// GuestUserName is the display name of the sentinel user that owns captures
// submitted without authentication. The row is seeded at migration time and
// its presence is a deployment precondition for the predict endpoint.
const GuestUserName = "invitado"

// UnknownLocationDesc is the description of the sentinel location reused for
// captures submitted without coordinates.
const UnknownLocationDesc = "desconocida"

// UserLocationDesc is the description given to locations created from
// user-supplied coordinates.
const UserLocationDesc = "user-supplied"

// User represents a registered account or the guest sentinel row.
type User struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"uniqueIndex;not null"` // display name
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	Avatar          string // avatar selector chosen in the profile view
	BackgroundColor string // background color preference
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Captures []Capture `gorm:"foreignKey:UserID"`
}

// Species represents one entry of the reference catalog. Static data,
// read-only at request time.
type Species struct {
	ID             uint   `gorm:"primaryKey"`
	ScientificName string `gorm:"uniqueIndex;not null"`
	CommonName     string
	Description    string `gorm:"type:text"`
	ImageURL       string
	AudioURL       string // optional reference call recording
}

// Location represents a coordinate pair a capture was recorded at. A single
// sentinel row described as UnknownLocationDesc is reused when no coordinates
// are supplied.
type Location struct {
	ID          uint    `gorm:"primaryKey"`
	Description string  `gorm:"not null"`
	Latitude    float64 `gorm:"index:idx_locations_lat_lon"`
	Longitude   float64 `gorm:"index:idx_locations_lat_lon"`
}

// Capture links an uploaded audio clip to the user that submitted it, the
// species the classifier resolved and the location it was recorded at.
type Capture struct {
	ID           uint    `gorm:"primaryKey"`
	ClipName     string  `gorm:"uniqueIndex;not null"` // stored file name, collision resistant
	OriginalName string  // client-supplied file name, metadata only
	Duration     float64 // clip length in seconds, 0 when unknown
	Confidence   float64
	CapturedAt   time.Time `gorm:"index;not null"`

	UserID     uint `gorm:"index;not null"`
	SpeciesID  uint `gorm:"index;not null"`
	LocationID uint `gorm:"index;not null"`

	User     User     `gorm:"foreignKey:UserID"`
	Species  Species  `gorm:"foreignKey:SpeciesID"`
	Location Location `gorm:"foreignKey:LocationID"`
}

// SpeciesCaptureCount aggregates how many captures resolved to a species.
type SpeciesCaptureCount struct {
	SpeciesID      uint
	ScientificName string
	CommonName     string
	Count          int64
}
