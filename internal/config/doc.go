// Package config loads and validates the photovault TOML configuration.
//
// Configuration is optional: when no file exists at the default location the
// repository defaults are used, which keep all state under the invoking
// user's home directory. Path fields accept "~" and are expanded to absolute
// paths during load.
package config
