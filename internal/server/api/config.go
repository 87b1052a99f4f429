package api

import "time"

// ServerConfig represents the management API configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address; empty disables the API" default:"localhost:3243" env:"MATRIXKB_API_ADDR"`
	Password          string        `help:"Require this password from API clients (empty uses the key file)" env:"MATRIXKB_API_PASSWORD"`
	NoAuth            bool          `help:"Serve the API without authentication" env:"MATRIXKB_API_NO_AUTH"`
	ConnectionTimeout time.Duration `help:"Deadline for reading a request" default:"10s" env:"MATRIXKB_API_CONNECTION_TIMEOUT"`
}
