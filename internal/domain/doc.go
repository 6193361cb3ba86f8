// Package domain contains the core domain entities and their validation
// logic. Domain types have no dependencies on storage, transport, or other
// infrastructure concerns.
package domain
