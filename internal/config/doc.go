// Package config loads and validates the anidex TOML configuration. It
// resolves the file from an explicit path, ~/.config/anidex/config.toml, or
// a project-local anidex.toml, expands path fields, folds TMDB tokens in
// from the environment, and applies repository defaults for everything left
// unset.
package config
