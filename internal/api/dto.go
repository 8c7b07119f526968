// dto.go: response shapes. JSON keys match what the web frontend consumes.
package api

import (
	"time"

	"github.com/phibia/phibia-go/internal/datastore"
)

// UserInfo is the public view of a user account.
type UserInfo struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Avatar          string `json:"avatar,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

func newUserInfo(user *datastore.User) UserInfo {
	return UserInfo{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Avatar:          user.Avatar,
		BackgroundColor: user.BackgroundColor,
	}
}

// SpeciesInfo is the catalog entry view.
type SpeciesInfo struct {
	ID               uint   `json:"id"`
	NombreCientifico string `json:"nombre_cientifico"`
	NombreComun      string `json:"nombre_comun"`
	Descripcion      string `json:"descripcion"`
	ImagenURL        string `json:"imagen_url,omitempty"`
	AudioURL         string `json:"audio_url,omitempty"`
}

func newSpeciesInfo(species *datastore.Species) SpeciesInfo {
	return SpeciesInfo{
		ID:               species.ID,
		NombreCientifico: species.ScientificName,
		NombreComun:      species.CommonName,
		Descripcion:      species.Description,
		ImagenURL:        species.ImageURL,
		AudioURL:         species.AudioURL,
	}
}

// LocationInfo is the coordinate view attached to captures.
type LocationInfo struct {
	ID          uint    `json:"id"`
	Descripcion string  `json:"descripcion"`
	Latitud     float64 `json:"latitud"`
	Longitud    float64 `json:"longitud"`
}

func newLocationInfo(location *datastore.Location) LocationInfo {
	return LocationInfo{
		ID:          location.ID,
		Descripcion: location.Description,
		Latitud:     location.Latitude,
		Longitud:    location.Longitude,
	}
}

// PredictionResponse is the success payload of POST /predict.
type PredictionResponse struct {
	Prediccion  string       `json:"prediccion"`
	Confianza   float64      `json:"confianza"`
	EspecieInfo SpeciesInfo  `json:"especie_info"`
	AudioID     uint         `json:"audio_id"`
	Ubicacion   LocationInfo `json:"ubicacion"`
}

// CaptureInfo is one row of a user's capture history.
type CaptureInfo struct {
	ID             uint         `json:"id"`
	Archivo        string       `json:"archivo"`         // stored clip name
	NombreOriginal string       `json:"nombre_original"` // name the client uploaded with
	Duracion       float64      `json:"duracion,omitempty"`
	Confianza      float64      `json:"confianza"`
	FechaCaptura   time.Time    `json:"fecha_captura"`
	Especie        SpeciesInfo  `json:"especie"`
	Ubicacion      LocationInfo `json:"ubicacion"`
}

func newCaptureInfo(capture *datastore.Capture) CaptureInfo {
	return CaptureInfo{
		ID:             capture.ID,
		Archivo:        capture.ClipName,
		NombreOriginal: capture.OriginalName,
		Duracion:       capture.Duration,
		Confianza:      capture.Confidence,
		FechaCaptura:   capture.CapturedAt,
		Especie:        newSpeciesInfo(&capture.Species),
		Ubicacion:      newLocationInfo(&capture.Location),
	}
}
