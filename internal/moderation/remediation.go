package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/inference"
	"github.com/halalchat/backend/internal/metrics"
)

// fallbackSuggestion is returned whenever the rewrite call fails. The user
// always gets actionable guidance; this path never errors.
const fallbackSuggestion = "We couldn't generate an alternative automatically. " +
	"Please revise your prompt to remove the flagged phrases and try again."

const remediationSystem = `You rewrite prompts for an Islamic content platform.
Rewrite the user's prompt so it no longer contains the flagged phrases or their intent,
while preserving the rest of the request as closely as possible.
Respond with ONLY the rewritten prompt, no commentary.`

// Remediator proposes a policy-compliant rewrite of a rejected prompt.
type Remediator struct {
	client inference.Client
	logger *slog.Logger
}

func NewRemediator(client inference.Client, logger *slog.Logger) *Remediator {
	return &Remediator{client: client, logger: logger}
}

// SuggestAlternative asks the model for a compliant rewrite. Invoked only
// after a confirmed violation, and called once — a rewrite is best-effort
// and not worth a retry. Any failure yields the fixed fallback string.
func (r *Remediator) SuggestAlternative(ctx context.Context, originalPrompt string, violatingPhrases []string) string {
	prompt := fmt.Sprintf("Original prompt:\n%s\n\nFlagged phrases:\n%s",
		originalPrompt, strings.Join(violatingPhrases, "\n"))

	resp, err := r.client.Generate(ctx, inference.Request{
		System: remediationSystem,
		Prompt: prompt,
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("remediate").Inc()
		r.logger.Warn("remediation call failed, returning fixed suggestion",
			slog.String("error", err.Error()),
		)
		return fallbackSuggestion
	}

	suggestion := strings.TrimSpace(resp.Text)
	if suggestion == "" {
		return fallbackSuggestion
	}
	return suggestion
}
