// Package client implements the native client side of the analysis
// protocol: task submission, status queries, and a sequential poll loop
// with configurable cadence, bounds, and failure tolerance.
package client
