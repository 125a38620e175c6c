// Package config loads and validates application configuration for the
// demo server.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server Server `mapstructure:"server" validate:"required"`
	Auth   Auth   `mapstructure:"auth"   validate:"required"`
	Static Static `mapstructure:"static"`
}

// Server contains server-related settings.
type Server struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Auth contains authentication settings for the demo server's protected
// operations.
type Auth struct {
	Realm string `mapstructure:"realm" validate:"required"`
	// CredentialsFile points at a JSON file mapping user ids to
	// {password_hash, role} records (bcrypt hashes).
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Static configures optional static content serving.
type Static struct {
	Path string `mapstructure:"path"` // URL prefix, e.g. /static
	Dir  string `mapstructure:"dir"`  // filesystem directory
}
