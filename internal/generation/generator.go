package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/inference"
	"github.com/halalchat/backend/internal/model"
)

// visualizationSentinel separates prose from the structured data block in
// the model's answer. Documented in the prompt; the extractor tolerates its
// absence and anything unparsable after it.
const visualizationSentinel = "---VISUALIZATION_DATA---"

const generateSystem = `You write content for an Islamic content platform.
All output must be respectful and free of references to intoxicants, gambling,
explicit sexual content, interest-based finance, and prohibited foods.`

// Params are the caller-supplied generation knobs.
type Params struct {
	Tone           string
	WordCount      int
	NegativePrompt string
}

// Output is the generator's result: prose plus the optional structured
// block. VisualizationData is nil whenever the model didn't emit a valid
// block, even if one was requested.
type Output struct {
	Text              string
	VisualizationData json.RawMessage
}

// Generator assembles the generation instruction and parses the answer.
type Generator struct {
	client inference.Client
	logger *slog.Logger
}

func NewGenerator(client inference.Client, logger *slog.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// Generate performs the content-generation call. This is the expensive,
// charged call of the pipeline: it is made exactly once per request, with no
// retry — the orchestrator surfaces failures as upstream errors instead.
func (g *Generator) Generate(ctx context.Context, prompt string, params Params, advice *model.VisualizationAdvice) (*Output, error) {
	resp, err := g.client.Generate(ctx, inference.Request{
		System: generateSystem,
		Prompt: buildInstruction(prompt, params, advice),
	})
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}

	text, vis := g.extractVisualization(resp.Text)
	return &Output{Text: text, VisualizationData: vis}, nil
}

// buildInstruction folds the generation parameters and the visualization
// request into one instruction string.
func buildInstruction(prompt string, params Params, advice *model.VisualizationAdvice) string {
	var b strings.Builder
	b.WriteString(prompt)

	if params.Tone != "" {
		fmt.Fprintf(&b, "\n\nWrite in a %s tone.", params.Tone)
	}
	if params.WordCount > 0 {
		fmt.Fprintf(&b, "\nAim for approximately %d words.", params.WordCount)
	}
	if params.NegativePrompt != "" {
		fmt.Fprintf(&b, "\nDo not include any of the following: %s.", params.NegativePrompt)
	}

	if advice != nil && advice.ShouldVisualize {
		fmt.Fprintf(&b,
			"\n\nAfter the prose, output a line containing exactly %s followed by a single JSON object of the form "+
				`{"type": %q, "title": %q, "data": ...} suitable for rendering a %s.`,
			visualizationSentinel, advice.VisualizationType, advice.Title, advice.VisualizationType,
		)
	}

	return b.String()
}

// extractVisualization splits the answer at the sentinel. A missing sentinel
// means prose-only output (even when a visualization was requested); invalid
// JSON after the sentinel is logged and dropped rather than failing the
// whole response.
func (g *Generator) extractVisualization(answer string) (string, json.RawMessage) {
	prose, block, found := strings.Cut(answer, visualizationSentinel)
	prose = strings.TrimSpace(prose)
	if !found {
		return prose, nil
	}

	block = strings.TrimSpace(block)
	if !json.Valid([]byte(block)) {
		g.logger.Warn("discarding invalid visualization block",
			slog.Int("block_len", len(block)),
		)
		return prose, nil
	}

	return prose, json.RawMessage(block)
}
