package gemini

import (
	"fmt"
	"strings"

	"github.com/PiyushChall/CogniSynapseRank/internal/generation"
)

// buildPrompt assembles the model prompt for the given pipeline stage.
// Returns generation.ErrUnknownStage for stages without a prompt.
func buildPrompt(stage generation.Stage, input generation.SectionInput) (string, error) {
	var prompt string

	switch stage {
	case generation.StageKeyword:
		prompt = fmt.Sprintf(
			"Analyze keywords from this page: %s\nContent: %s\nProvide keywords, search volume, traffic potential, business potential, search intent matching, and keyword modifiers.",
			input.URL, input.PageText)

	case generation.StageContent:
		prompt = fmt.Sprintf(
			"Analyze content, elements, and metadata of this page: %s\nContent: %s\nProvide recommendations.",
			input.URL, input.PageText)

	case generation.StageOnPage:
		prompt = fmt.Sprintf(
			"Analyze on-page SEO for this page: %s\nContent: %s\nProvide recommendations for titles, subheadings, internal linking, readability, and content optimization.",
			input.URL, input.PageText)

	case generation.StageLinkBuilding:
		prompt = fmt.Sprintf(
			"Analyze link building potential for this page: %s\nProvide recommendations for creating backlinks and earning backlinks.",
			input.URL)

	case generation.StageVisualization:
		prompt = fmt.Sprintf(
			"Keyword Analysis Results: %s\nContent Analysis Results: %s\nLinkBuilding Results: %s\nGenerate tables/graphs for keywords, content, and linkbuilding recommendations.",
			input.Sections[generation.StageKeyword],
			input.Sections[generation.StageContent],
			input.Sections[generation.StageLinkBuilding])

	case generation.StageManagerReview:
		combined := fmt.Sprintf(
			"Keyword Results:\n%s\nContent Results:\n%s\nVisualizer Results:\n%s\nOnpage Results:\n%s\nLinkBuilding Results:\n%s",
			input.Sections[generation.StageKeyword],
			input.Sections[generation.StageContent],
			input.Sections[generation.StageVisualization],
			input.Sections[generation.StageOnPage],
			input.Sections[generation.StageLinkBuilding])
		prompt = fmt.Sprintf(
			"Proofread and validate the following results:\n%s\nProvide feedback on accuracy and consistency.",
			combined)

	default:
		return "", fmt.Errorf("%w: %s", generation.ErrUnknownStage, stage)
	}

	// Competitor context is offered to the content-driven stages only; the
	// URL-only and aggregation stages have nothing to compare against.
	switch stage {
	case generation.StageKeyword, generation.StageContent, generation.StageOnPage:
		if len(input.CompetitorPages) > 0 {
			prompt += competitorContext(input.CompetitorPages)
		}
	}

	return prompt, nil
}

// competitorContext renders comparison page texts as additional prompt context.
func competitorContext(pages map[string]string) string {
	var b strings.Builder
	b.WriteString("\nCompare against these competitor pages:\n")
	for url, text := range pages {
		fmt.Fprintf(&b, "Competitor: %s\nContent: %s\n", url, text)
	}
	return b.String()
}
