// Package classifier invokes the external species identification model and
// decodes its output. The model itself is an opaque collaborator reached over
// HTTP; this package only owns the input/output contract.
package classifier

import (
	"context"
	"math"
)

// Prediction is the classifier output for one audio clip. Label has the form
// "<integer-id>-<scientific name>" and Confidence is within [0,1], rounded to
// two decimals before being surfaced.
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier identifies the species recorded in the audio file at the given
// path. Implementations must respect the context deadline.
type Classifier interface {
	Predict(ctx context.Context, audioPath string) (Prediction, error)
}

// roundConfidence clamps a raw model score into [0,1] and rounds it to two
// decimal places.
func roundConfidence(confidence float64) float64 {
	clamped := math.Min(math.Max(confidence, 0), 1)
	return math.Round(clamped*100) / 100
}
