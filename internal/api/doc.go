// Package api contains the HTTP handlers for the analysis service:
// submission, result polling, the embedded submission page, and the
// error-to-status-code mapping shared across handlers.
package api
