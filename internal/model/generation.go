package model

import "encoding/json"

// GenerationRequest is the input to the generation pipeline. Prompt and
// UserID are required; everything else shapes the instruction sent to the
// model.
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	WordCount      int    `json:"wordCount,omitempty"`
	Tone           string `json:"tone,omitempty"`
	ToolType       string `json:"toolType,omitempty"`
	UserID         string `json:"userId"`
}

// GenerationResult is the success output of the pipeline. ContentID is a
// pointer so it serializes as null when persistence failed after a successful
// generation (degraded success: the caller still gets their content).
// VisualizationData likewise serializes as null when the answer carried no
// structured block.
type GenerationResult struct {
	Content           string          `json:"content"`
	ContentID         *string         `json:"contentId"`
	VisualizationData json.RawMessage `json:"visualizationData"`
}

// ClassificationResult is the policy verdict for one prompt. Transient —
// produced per request and never persisted.
type ClassificationResult struct {
	IsHaram      bool     `json:"isHaram"`
	Explanation  string   `json:"explanation,omitempty"`
	HaramPhrases []string `json:"haramPhrases"`
	Categories   []string `json:"categories"`
	// Degraded is true when the verdict came from the fallback path because
	// the primary classifier was unavailable. Logged, never surfaced.
	Degraded bool `json:"-"`
}

// Visualization types the advisor may choose from.
const (
	VisualizationChart    = "chart"
	VisualizationTable    = "table"
	VisualizationList     = "list"
	VisualizationTimeline = "timeline"
)

// VisualizationAdvice is the pre-generation decision about whether structured
// data should accompany prose output. Transient.
type VisualizationAdvice struct {
	ShouldVisualize   bool   `json:"shouldVisualize"`
	VisualizationType string `json:"visualizationType,omitempty"`
	Title             string `json:"title,omitempty"`
}
