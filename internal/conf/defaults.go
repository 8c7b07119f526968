// defaults.go: default configuration values registered with viper
package conf

import "github.com/spf13/viper"

// setDefaultConfig registers default values for all known settings keys.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Web server
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.host", "0.0.0.0")
	viper.SetDefault("webserver.port", "5000")
	viper.SetDefault("webserver.frontendorigin", "http://localhost:5173")

	// Uploads
	viper.SetDefault("upload.path", "uploads")

	// Classifier
	viper.SetDefault("classifier.endpoint", "http://localhost:8501/predict")
	viper.SetDefault("classifier.timeout", 30)

	// Security
	viper.SetDefault("security.jwtsecret", "")
	viper.SetDefault("security.tokenttl", 24)
	viper.SetDefault("security.securecookie", false)

	// Database output
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "phibia.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "phibia")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "phibia")

	// Logging
	viper.SetDefault("log.path", "logs")
	viper.SetDefault("log.maxsizemb", 100)
	viper.SetDefault("log.maxbackups", 3)
	viper.SetDefault("log.maxagedays", 28)
}
