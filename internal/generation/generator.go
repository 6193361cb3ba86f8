package generation

import "context"

// Stage identifies one step of the analysis pipeline that produces a
// report section.
type Stage string

// Pipeline stages, in execution order.
const (
	StageKeyword       Stage = "keyword"
	StageContent       Stage = "content"
	StageOnPage        Stage = "onpage"
	StageLinkBuilding  Stage = "linkbuilding"
	StageVisualization Stage = "visualization"
	StageManagerReview Stage = "manager"
)

// SectionInput carries everything a stage needs to produce its section.
// Not every stage consumes every field: the link building stage only uses
// the URL, the visualization and manager stages build on prior sections.
type SectionInput struct {
	// URL is the main page under analysis.
	URL string

	// PageText is the extracted text content of the main page.
	PageText string

	// CompetitorPages maps comparison URLs to their extracted text.
	// May be empty; stages offer it to the model as additional context.
	CompetitorPages map[string]string

	// Sections holds the output of previously completed stages,
	// keyed by stage.
	Sections map[Stage]string
}

// Generator defines the interface for producing one report section per
// pipeline stage from the given input.
type Generator interface {
	// GenerateSection produces the report text for the given stage.
	// Returns an error (see errors.go for the taxonomy) if generation fails.
	GenerateSection(ctx context.Context, stage Stage, input SectionInput) (string, error)
}
