// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig, loading failures ErrLoadConfig.
package config

// Default values.
const (
	DefaultAddr         = "0.0.0.0:3000"
	DefaultUploadsDir   = "uploads"
	DefaultMaxBodyBytes = 50 << 20
	DefaultServiceName  = "Sensor Data Upload Server"
	DefaultVersion      = "1.0.0"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. "0.0.0.0:3000".
	Addr string `koanf:"addr"`

	// UploadsDir is where received payloads are written, one file per upload.
	UploadsDir string `koanf:"uploads_dir"`

	// MaxBodyBytes caps the accepted request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// AllowedOrigins is a comma separated CORS origin list; "*" allows any.
	AllowedOrigins string `koanf:"allowed_origins"`

	// ServiceName and Version are reported by GET / and GET /health.
	ServiceName string `koanf:"service_name"`
	Version     string `koanf:"version"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           DefaultAddr,
		UploadsDir:     DefaultUploadsDir,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		AllowedOrigins: "*",
		ServiceName:    DefaultServiceName,
		Version:        DefaultVersion,
	}
}
