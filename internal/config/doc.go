// Package config loads and validates application configuration from
// defaults, an optional config.yaml, an optional .env file and STUDY_
// environment variables.
package config
