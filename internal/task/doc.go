// Package task provides the background task infrastructure: the Task and
// TaskStore abstractions, a TaskRunner with a worker pool, crash recovery
// and stuck-task detection, and the AnalysisTask that executes the SEO
// analysis pipeline.
package task
