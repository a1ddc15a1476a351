// Package config defines the application configuration structures and the
// viper-based loading of that configuration from environment variables and
// optional config files.
package config
