package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/errors"
)

func TestParseLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		label       string
		wantErr     bool
		wantID      uint
		wantSciName string
	}{
		{
			name:        "valid label",
			label:       "3-Rhinella arenarum",
			wantID:      3,
			wantSciName: "Rhinella arenarum",
		},
		{
			name:        "scientific name containing a dash",
			label:       "12-Boana pulchella-complex",
			wantID:      12,
			wantSciName: "Boana pulchella-complex",
		},
		{
			name:        "whitespace around parts",
			label:       "7 - Leptodactylus latrans",
			wantID:      7,
			wantSciName: "Leptodactylus latrans",
		},
		{
			name:    "no separator",
			label:   "abc",
			wantErr: true,
		},
		{
			name:    "non-integer prefix",
			label:   "x-Foo bar",
			wantErr: true,
		},
		{
			name:    "empty scientific name",
			label:   "3-",
			wantErr: true,
		},
		{
			name:    "empty label",
			label:   "",
			wantErr: true,
		},
		{
			name:    "negative id",
			label:   "-3-Foo",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseLabel(tc.label)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCategory(err, errors.CategoryLabelParsing),
					"malformed labels must be reported as label-parsing errors")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, parsed.SpeciesID)
			assert.Equal(t, tc.wantSciName, parsed.ScientificName)
		})
	}
}

func TestParseLabelCarriesRawLabel(t *testing.T) {
	t.Parallel()

	_, err := ParseLabel("abc")
	require.Error(t, err)

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "abc", ee.GetContext()["label"])
}

func TestRoundConfidence(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.87, roundConfidence(0.8712), 1e-9)
	assert.InDelta(t, 0.88, roundConfidence(0.875), 1e-9)
	assert.InDelta(t, 0.0, roundConfidence(-0.2), 1e-9)
	assert.InDelta(t, 1.0, roundConfidence(1.7), 1e-9)
}
