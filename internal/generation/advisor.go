// Package generation talks to the inference model to produce the actual
// content: a pre-generation visualization advisory and the generation call
// itself, including extraction of the structured data block.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/inference"
	"github.com/halalchat/backend/internal/metrics"
	"github.com/halalchat/backend/internal/model"
)

const adviseSystem = `You decide whether an answer to a prompt would benefit from structured data alongside the prose.
Respond with a single JSON object: {"shouldVisualize": bool, "visualizationType": "chart"|"table"|"list"|"timeline", "title": string}.
When shouldVisualize is false, omit the other fields.`

// Advisor asks the model whether generated content should carry structured
// visualization data, and of what shape.
type Advisor struct {
	client inference.Client
	logger *slog.Logger
}

func NewAdvisor(client inference.Client, logger *slog.Logger) *Advisor {
	return &Advisor{client: client, logger: logger}
}

type adviceWire struct {
	ShouldVisualize   bool   `json:"shouldVisualize"`
	VisualizationType string `json:"visualizationType"`
	Title             string `json:"title"`
}

// Advise returns the visualization decision for prompt. Advisory is
// best-effort: a service error or unparsable answer degrades to "no
// visualization" and never blocks generation.
func (a *Advisor) Advise(ctx context.Context, prompt string) *model.VisualizationAdvice {
	none := &model.VisualizationAdvice{}

	resp, err := inference.WithRetry(ctx, a.client, inference.Request{
		System:     adviseSystem,
		Prompt:     fmt.Sprintf("Prompt:\n%s", prompt),
		JSONOutput: true,
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("advise").Inc()
		a.logger.Warn("visualization advisory unavailable",
			slog.String("error", err.Error()),
		)
		return none
	}

	advice := parseAdvice(resp.Text)
	if advice.ShouldVisualize && !validVisualizationType(advice.VisualizationType) {
		a.logger.Warn("advisor chose unknown visualization type",
			slog.String("type", advice.VisualizationType),
		)
		return none
	}
	return advice
}

// parseAdvice reads the advisory answer: JSON first, labeled lines second,
// "no visualization" last. Same tolerant contract as the classifier.
func parseAdvice(answer string) *model.VisualizationAdvice {
	var wire adviceWire
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &wire); err == nil {
		return &model.VisualizationAdvice{
			ShouldVisualize:   wire.ShouldVisualize,
			VisualizationType: strings.ToLower(strings.TrimSpace(wire.VisualizationType)),
			Title:             strings.TrimSpace(wire.Title),
		}
	}

	labels := inference.ParseLabels(answer)
	if len(labels) == 0 {
		return &model.VisualizationAdvice{}
	}
	return &model.VisualizationAdvice{
		ShouldVisualize:   labels.GetBool("should visualize") || labels.GetBool("visualize"),
		VisualizationType: strings.ToLower(labels.Get("visualization type")),
		Title:             labels.Get("title"),
	}
}

func validVisualizationType(t string) bool {
	switch t {
	case model.VisualizationChart, model.VisualizationTable,
		model.VisualizationList, model.VisualizationTimeline:
		return true
	}
	return false
}
