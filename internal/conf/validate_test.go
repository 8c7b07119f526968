package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Upload: UploadSettings{Path: "uploads"},
		Classifier: ClassifierSettings{
			Endpoint: "http://localhost:8501/predict",
			Timeout:  30,
		},
		Security: SecuritySettings{JWTSecret: "secret", TokenTTL: 24},
		Output: OutputSettings{
			SQLite: SQLiteSettings{Enabled: true, Path: "phibia.db"},
		},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{
			name:   "valid settings pass",
			mutate: func(s *Settings) {},
		},
		{
			name: "both databases enabled",
			mutate: func(s *Settings) {
				s.Output.MySQL.Enabled = true
			},
			wantErr: "only one database",
		},
		{
			name: "no database enabled",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = false
			},
			wantErr: "no database output enabled",
		},
		{
			name: "sqlite without path",
			mutate: func(s *Settings) {
				s.Output.SQLite.Path = ""
			},
			wantErr: "no database path",
		},
		{
			name: "mysql without host",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = false
				s.Output.MySQL.Enabled = true
				s.Output.MySQL.Database = "phibia"
			},
			wantErr: "host or database",
		},
		{
			name: "empty upload path",
			mutate: func(s *Settings) {
				s.Upload.Path = ""
			},
			wantErr: "upload path",
		},
		{
			name: "empty classifier endpoint",
			mutate: func(s *Settings) {
				s.Classifier.Endpoint = ""
			},
			wantErr: "classifier endpoint",
		},
		{
			name: "non-positive classifier timeout",
			mutate: func(s *Settings) {
				s.Classifier.Timeout = 0
			},
			wantErr: "timeout must be positive",
		},
		{
			name: "empty jwt secret outside debug",
			mutate: func(s *Settings) {
				s.Security.JWTSecret = ""
			},
			wantErr: "jwtsecret",
		},
		{
			name: "empty jwt secret tolerated in debug",
			mutate: func(s *Settings) {
				s.Security.JWTSecret = ""
				s.Debug = true
			},
		},
		{
			name: "non-positive token ttl",
			mutate: func(s *Settings) {
				s.Security.TokenTTL = 0
			},
			wantErr: "TTL must be positive",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tc.mutate(settings)

			err := ValidateSettings(settings)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateNilSettings(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateSettings(nil))
}
