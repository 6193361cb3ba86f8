// Package generation defines the interface and error taxonomy for
// LLM-backed report section generation. The concrete Gemini implementation
// lives in internal/platform/gemini.
package generation
