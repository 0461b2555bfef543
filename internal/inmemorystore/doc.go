// Package inmemorystore provides a thread-safe, in-memory implementation
// of the resultstore.Store interface. Results live for as long as the
// store does; nothing is persisted.
package inmemorystore
