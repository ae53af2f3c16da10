// Package effects holds the catalog of audio transformations the service
// offers. Each effect is a named ffmpeg filter graph. The built-in catalog is
// fixed; operators may append entries through configuration.
package effects
