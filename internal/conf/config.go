// Package conf loads and validates the application settings. It defines the
// settings struct and functions to load and save the settings.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Debug          bool   // true to enable debug output
	Host           string // interface to bind to
	Port           string // port to listen on
	FrontendOrigin string // allowed CORS origin for the web frontend
}

// UploadSettings contains settings for inbound audio storage.
type UploadSettings struct {
	Path string // directory where uploaded clips are stored
}

// ClassifierSettings contains settings for the external model server.
type ClassifierSettings struct {
	Endpoint string // base URL of the model server
	Timeout  int    // per-request deadline in seconds
}

// SecuritySettings contains settings for token issuance.
type SecuritySettings struct {
	JWTSecret    string // HMAC signing secret
	TokenTTL     int    // token lifetime in hours
	SecureCookie bool   // set the Secure flag on the auth cookie
}

// SQLiteSettings contains SQLite database settings.
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the database file
}

// MySQLSettings contains MySQL database settings.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// OutputSettings groups the supported database backends.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// LogSettings contains file log rotation settings shared by all service loggers.
type LogSettings struct {
	Path       string // directory for log files
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // rotated files to keep
	MaxAgeDays int    // days to keep rotated files
}

// Settings is the top level configuration struct.
type Settings struct {
	Debug      bool
	WebServer  WebServerSettings
	Upload     UploadSettings
	Classifier ClassifierSettings
	Security   SecuritySettings
	Output     OutputSettings
	Log        LogSettings

	Version   string `yaml:"-"` // build version, runtime value
	BuildDate string `yaml:"-"` // build date, runtime value
}

var (
	settingsInstance *Settings
	settingsOnce     sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and returns the populated settings.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("PHIBIA")
	viper.AutomaticEnv()

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file on disk, defaults and env vars apply.
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories that are searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "phibia-go"),
	}, nil
}

// Setting returns the current settings instance, loading it once if needed.
func Setting() *Settings {
	settingsOnce.Do(func() {
		settingsMutex.RLock()
		loaded := settingsInstance != nil
		settingsMutex.RUnlock()
		if !loaded {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Current returns the loaded settings instance, or nil when Load has not
// run. Callers that can work from defaults should prefer this over Setting.
func Current() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings writes the given settings to the config file as YAML. The file
// is written atomically via a temporary file in the same directory.
func SaveSettings(settings *Settings, configPath string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tmpName, configPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing config file %s: %w", configPath, err)
	}
	return nil
}
