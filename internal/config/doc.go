// Package config loads, normalizes, and validates dupfynd configuration.
//
// It supplies defaults, reads an optional TOML file, applies DUPFYND_*
// environment overrides and expands user paths. Flags given on the command
// line are layered on top by the caller.
package config
