// Package config loads, normalizes, and validates warble configuration.
//
// Configuration comes from a TOML file (default ~/.config/warble/config.toml)
// with repository defaults applied first. All path fields are expanded and
// absolute after Load. The bot token is never stored in the file; it is read
// from the environment variable named by bot.token_env.
package config
