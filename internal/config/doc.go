// Package config defines the application configuration structure and loads
// it from config files and environment variables using viper, validating the
// result with go-playground/validator.
package config
