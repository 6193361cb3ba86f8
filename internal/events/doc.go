// Package events provides a lightweight in-process event system used to
// decouple the service layer from background task construction.
package events
