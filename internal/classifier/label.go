package classifier

import (
	"strconv"
	"strings"

	"github.com/phibia/phibia-go/internal/errors"
)

// ParsedLabel is the decoded form of a classifier label.
type ParsedLabel struct {
	SpeciesID      uint
	ScientificName string
}

// ParseLabel splits a "<integer-id>-<scientific name>" label on the first
// dash. A missing separator, a non-integer prefix or an empty remainder is a
// contract violation between the model and the catalog, not a user input
// error, so the raw label travels in the error context for diagnosis.
func ParseLabel(label string) (ParsedLabel, error) {
	idPart, namePart, found := strings.Cut(label, "-")
	if !found {
		return ParsedLabel{}, labelError("label has no separator", label)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 32)
	if err != nil {
		return ParsedLabel{}, labelError("label prefix is not an integer", label)
	}

	name := strings.TrimSpace(namePart)
	if name == "" {
		return ParsedLabel{}, labelError("label has no scientific name", label)
	}

	return ParsedLabel{SpeciesID: uint(id), ScientificName: name}, nil
}

func labelError(msg, label string) error {
	return errors.Newf("malformed classifier label: %s", msg).
		Category(errors.CategoryLabelParsing).
		Component("classifier").
		Context("label", label).
		Build()
}
