// Package config loads the optional TOML settings file shared by the unpack
// command line tools and turns it into an export configuration.
package config
