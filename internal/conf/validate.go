// validate.go: settings validation performed after unmarshaling
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded settings for configurations that cannot
// work at runtime. It returns the first problem found.
func ValidateSettings(settings *Settings) error {
	if settings == nil {
		return errors.New("settings is nil")
	}

	sqlite := settings.Output.SQLite.Enabled
	mysql := settings.Output.MySQL.Enabled
	switch {
	case sqlite && mysql:
		return errors.New("only one database output can be enabled, both SQLite and MySQL are set")
	case !sqlite && !mysql:
		return errors.New("no database output enabled, enable either SQLite or MySQL")
	}

	if sqlite && settings.Output.SQLite.Path == "" {
		return errors.New("SQLite output enabled but no database path set")
	}
	if mysql {
		if settings.Output.MySQL.Host == "" || settings.Output.MySQL.Database == "" {
			return errors.New("MySQL output enabled but host or database is empty")
		}
	}

	if settings.Upload.Path == "" {
		return errors.New("upload path must not be empty")
	}

	if settings.Classifier.Endpoint == "" {
		return errors.New("classifier endpoint must not be empty")
	}
	if settings.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier timeout must be positive, got %d", settings.Classifier.Timeout)
	}

	// An empty secret is tolerated in debug mode so local development works
	// without a config file, never in production.
	if settings.Security.JWTSecret == "" && !settings.Debug {
		return errors.New("security.jwtsecret must be set when debug mode is disabled")
	}
	if settings.Security.TokenTTL <= 0 {
		return fmt.Errorf("security token TTL must be positive, got %d", settings.Security.TokenTTL)
	}

	return nil
}
