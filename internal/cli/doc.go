// Package cli provides command-line interface setup and configuration
// for the transquery application. It handles flag parsing, language
// choice validation, command creation, and configuration management
// using cobra and viper.
package cli
