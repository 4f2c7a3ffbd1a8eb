// Package config loads runtime settings.
//
// Precedence, lowest to highest: built-in defaults, a YAML config file,
// environment variables with the CONFWATCH_ prefix, then command-line
// flags applied by the caller. A .env file in the working directory is
// read into the environment first when present.
package config
