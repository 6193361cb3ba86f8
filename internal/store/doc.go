// Package store defines persistence interfaces and shared persistence
// helpers (sentinel errors, the DBTX abstraction, and the transaction
// runner). Concrete implementations live under internal/platform.
package store
