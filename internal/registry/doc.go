// Package registry provides the central "glue" for compiled-in sector models.
//
// The Registry is responsible for storing mappings between the handler names
// used in `sector_model` blocks (e.g., "water_supply") and the compiled Go
// simulate functions that implement them. It also holds the parsed,
// format-agnostic sector model definitions from the configuration.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the configuration are perfectly in sync: every
// handler a sector model names exists, and every port or parameter the Go
// code reads is declared in the configuration.
package registry
