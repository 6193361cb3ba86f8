// Package gemini implements the generation.Generator interface on top of
// Google's Gemini API (google.golang.org/genai), including per-stage prompt
// construction and retry handling for transient API failures.
package gemini
