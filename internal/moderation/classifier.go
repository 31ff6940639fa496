// Package moderation decides whether a prompt (or generated response)
// violates the platform's content policy, and produces compliant rewrites
// for prompts that do.
//
// Classification is probabilistic and the upstream model is unreliable, so
// the classifier carries a degraded-but-available mode: a transport failure
// on the primary path falls through to a zero-shot labeling call on a
// cheaper model plus local keyword matching. A verdict is always produced;
// transport errors never escape this package.
package moderation

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

// confidenceThreshold is the minimum zero-shot score for a category to count
// as a violation on the fallback path.
const confidenceThreshold = 0.7

const classifySystem = `You are a content-policy reviewer for an Islamic content platform.
Judge ONLY against these categories: intoxicants, gambling, explicit sexual content, interest-based finance, prohibited foods.
Respond with a single JSON object: {"isHaram": bool, "explanation": string, "haramPhrases": [string], "categories": [string]}.
haramPhrases must quote the exact offending substrings from the input.`

// Classifier runs the policy check. The primary client is the full model
// asked for a structured verdict; the labeler is a cheaper model used only
// for the zero-shot fallback.
type Classifier struct {
	primary  inference.Client
	labeler  inference.Client
	taxonomy *Taxonomy
	logger   *slog.Logger
}

func NewClassifier(primary, labeler inference.Client, taxonomy *Taxonomy, logger *slog.Logger) *Classifier {
	return &Classifier{
		primary:  primary,
		labeler:  labeler,
		taxonomy: taxonomy,
		logger:   logger,
	}
}

// classifyWire is the structured shape requested from the primary model.
type classifyWire struct {
	IsHaram      bool     `json:"isHaram"`
	Explanation  string   `json:"explanation"`
	HaramPhrases []string `json:"haramPhrases"`
	Categories   []string `json:"categories"`
}

// Classify produces a verdict for text. It never returns an error: malformed
// model output degrades to "not violating" with a logged warning, and a
// primary transport failure is absorbed by the fallback path.
func (c *Classifier) Classify(ctx context.Context, text string) *model.ClassificationResult {
	resp, err := inference.WithRetry(ctx, c.primary, inference.Request{
		System:     classifySystem,
		Prompt:     fmt.Sprintf("Review this prompt:\n\n%s", text),
		JSONOutput: true,
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("classify").Inc()
		c.logger.Warn("primary classifier unavailable, using fallback",
			slog.String("error", err.Error()),
			slog.Int("prompt_len", len(text)),
		)
		return c.classifyFallback(ctx, text)
	}

	return c.parseVerdict(resp.Text)
}

// parseVerdict reads the primary model's answer: strict JSON first, then the
// tolerant labeled-line convention, then a clean "No" verdict. Never panics,
// never errors.
func (c *Classifier) parseVerdict(answer string) *model.ClassificationResult {
	var wire classifyWire
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &wire); err == nil {
		return &model.ClassificationResult{
			IsHaram:      wire.IsHaram,
			Explanation:  wire.Explanation,
			HaramPhrases: dedupe(wire.HaramPhrases),
			Categories:   dedupe(wire.Categories),
		}
	}

	labels := inference.ParseLabels(answer)
	if len(labels) == 0 {
		c.logger.Warn("classifier output unparsable, treating as compliant",
			slog.Int("answer_len", len(answer)),
		)
		return &model.ClassificationResult{
			HaramPhrases: []string{},
			Categories:   []string{},
		}
	}

	return &model.ClassificationResult{
		IsHaram:      labels.GetBool("haram") || labels.GetBool("isharam") || labels.GetBool("verdict"),
		Explanation:  labels.Get("explanation"),
		HaramPhrases: dedupe(labels.GetList("haram phrases")),
		Categories:   dedupe(labels.GetList("categories")),
	}
}

// labelScore is one entry of the zero-shot labeler's answer.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// classifyFallback is the degraded path: zero-shot category scores from the
// cheap model, offending phrases from local keyword proximity. If even the
// labeler is down, the verdict degrades to "not classified as violating".
func (c *Classifier) classifyFallback(ctx context.Context, text string) *model.ClassificationResult {
	result := &model.ClassificationResult{
		HaramPhrases: []string{},
		Categories:   []string{},
		Degraded:     true,
	}

	prompt := fmt.Sprintf(
		"Score how strongly this text relates to each label, 0.0 to 1.0.\nLabels: %s\nRespond with a JSON array of {\"label\": string, \"score\": number}.\n\nText:\n%s",
		strings.Join(c.taxonomy.CategoryNames(), ", "), text,
	)

	resp, err := inference.WithRetry(ctx, c.labeler, inference.Request{
		Prompt:     prompt,
		JSONOutput: true,
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("label").Inc()
		c.logger.Warn("zero-shot labeler unavailable, treating as compliant",
			slog.String("error", err.Error()),
		)
		return result
	}

	var scores []labelScore
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &scores); err != nil {
		c.logger.Warn("zero-shot labeler output unparsable, treating as compliant",
			slog.String("error", err.Error()),
		)
		return result
	}

	for _, s := range scores {
		if s.Score > confidenceThreshold {
			result.Categories = append(result.Categories, s.Label)
		}
	}
	if len(result.Categories) == 0 {
		return result
	}

	result.IsHaram = true
	result.Explanation = "content matches restricted categories: " + strings.Join(result.Categories, ", ")
	result.Categories = dedupe(result.Categories)
	result.HaramPhrases = c.taxonomy.ExtractPhrases(text, result.Categories)
	return result
}

// dedupe removes duplicates while preserving order. Model answers repeat
// phrases often enough that callers rely on this.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
