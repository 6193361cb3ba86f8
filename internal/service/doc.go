// Package service contains the application service layer. It coordinates
// domain entities, persistence, and background task scheduling, keeping
// HTTP handlers and tasks free of business logic.
package service
