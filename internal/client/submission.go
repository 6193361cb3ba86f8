package client

import "strings"

// Submission carries the analysis request fields. JSON tags match the wire
// format of POST /analyze.
type Submission struct {
	MainURL        string   `json:"main_url"`
	ComparisonURLs []string `json:"comparison_urls"`
}

// ParseComparisonURLs derives the comparison URL list from a comma-separated
// input string: each piece is trimmed of surrounding whitespace, empty pieces
// are dropped, and relative order is preserved. No de-duplication is applied.
// An empty input yields an empty (non-nil) slice.
func ParseComparisonURLs(s string) []string {
	urls := []string{}
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		urls = append(urls, piece)
	}
	return urls
}

// NewSubmission builds a Submission from the raw form fields: the main URL
// verbatim and the comparison URLs parsed per ParseComparisonURLs.
func NewSubmission(mainURL, comparisonURLs string) Submission {
	return Submission{
		MainURL:        strings.TrimSpace(mainURL),
		ComparisonURLs: ParseComparisonURLs(comparisonURLs),
	}
}
