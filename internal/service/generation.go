// Package service contains the business logic layer: validation, the
// moderation-then-generation pipeline, credit accounting, and referral
// processing. Handlers translate HTTP to these calls; repositories do the
// storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/generation"
	"github.com/halalchat/backend/internal/metrics"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

const (
	// SignupCreditGrant is the one authoritative new-user grant, applied at
	// registration and at lazy balance creation alike.
	SignupCreditGrant = 5

	MaxPromptLength = 4000
	MaxWordCount    = 2000
	MaxTitleLength  = 80
)

// Classifier renders a moderation verdict for a prompt. Implementations
// must always answer; degradation is internal.
type Classifier interface {
	Classify(ctx context.Context, text string) *model.ClassificationResult
}

// Remediator proposes a compliant rewrite for a rejected prompt.
type Remediator interface {
	SuggestAlternative(ctx context.Context, originalPrompt string, violatingPhrases []string) string
}

// Advisor decides whether generated content should carry visualization data.
type Advisor interface {
	Advise(ctx context.Context, prompt string) *model.VisualizationAdvice
}

// Generator performs the content generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string, params generation.Params, advice *model.VisualizationAdvice) (*generation.Output, error)
}

// GenerationService runs the full pipeline for one content request:
// credit check, moderation, advisory, generation, debit, persistence.
type GenerationService struct {
	balances   repository.BalanceRepository
	artifacts  repository.ArtifactRepository
	classifier Classifier
	remediator Remediator
	advisor    Advisor
	generator  Generator
	logger     *slog.Logger
}

func NewGenerationService(
	balances repository.BalanceRepository,
	artifacts repository.ArtifactRepository,
	classifier Classifier,
	remediator Remediator,
	advisor Advisor,
	generator Generator,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		balances:   balances,
		artifacts:  artifacts,
		classifier: classifier,
		remediator: remediator,
		advisor:    advisor,
		generator:  generator,
		logger:     logger,
	}
}

// Generate handles one content request end to end.
//
// Ordering matters: the balance is checked before any model call, moderation
// runs before generation, and the debit happens only after generation
// succeeded. A rejected prompt is never charged. The debit and the artifact
// write run detached from request cancellation so a client disconnect after
// generation cannot produce uncharged content.
func (s *GenerationService) Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.UserID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	if req.Prompt == "" {
		return nil, apperror.ValidationFailed("prompt", "prompt is required")
	}
	if len(req.Prompt) > MaxPromptLength {
		return nil, apperror.ValidationFailed("prompt",
			fmt.Sprintf("prompt must be %d characters or less", MaxPromptLength))
	}
	if req.WordCount < 0 || req.WordCount > MaxWordCount {
		return nil, apperror.ValidationFailed("wordCount",
			fmt.Sprintf("word count must be between 0 and %d", MaxWordCount))
	}

	balance, err := s.balances.EnsureBalance(ctx, req.UserID, SignupCreditGrant)
	if err != nil {
		return nil, apperror.Upstream("balance lookup", err)
	}
	if balance.TotalCredits <= 0 {
		metrics.GenerationsTotal.WithLabelValues("insufficient_credits").Inc()
		return nil, apperror.InsufficientCredits(req.UserID)
	}

	verdict := s.classifier.Classify(ctx, req.Prompt)
	if verdict.Degraded {
		metrics.ClassifierFallbacksTotal.Inc()
	}
	if verdict.IsHaram {
		return nil, s.reject(ctx, req, verdict)
	}

	advice := s.advisor.Advise(ctx, req.Prompt)

	output, err := s.generator.Generate(ctx, req.Prompt, generation.Params{
		Tone:           req.Tone,
		WordCount:      req.WordCount,
		NegativePrompt: req.NegativePrompt,
	}, advice)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("generate").Inc()
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		s.logger.Error("content generation failed",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("content generation", err)
	}

	// Past this point the model has produced content. Detach from the
	// request context so cancellation cannot skip the charge or the write.
	persistCtx := context.WithoutCancel(ctx)

	if _, err := s.balances.DebitCredit(persistCtx, req.UserID); err != nil {
		// A concurrent spender can empty the balance between the check and
		// the debit; the conditional decrement catches that here.
		if errors.Is(err, apperror.ErrInsufficientCredits) {
			metrics.GenerationsTotal.WithLabelValues("insufficient_credits").Inc()
			return nil, err
		}
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, apperror.Upstream("credit debit", err)
	}
	metrics.CreditDebitsTotal.Inc()

	artifact := &model.ContentArtifact{
		UserID:            req.UserID,
		Title:             artifactTitle(req.Prompt, advice),
		Content:           output.Text,
		VisualizationData: output.VisualizationData,
		Type:              req.ToolType,
	}
	if err := s.artifacts.CreateArtifact(persistCtx, artifact); err != nil {
		// The user has been charged and has the content; losing the stored
		// copy degrades the response rather than failing it.
		s.logger.Error("artifact persistence failed after debit",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		metrics.GenerationsTotal.WithLabelValues("degraded").Inc()
		return &model.GenerationResult{
			Content:           output.Text,
			VisualizationData: output.VisualizationData,
		}, nil
	}

	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("content generated",
		slog.String("user_id", req.UserID),
		slog.String("content_id", artifact.ID),
		slog.Int("prompt_len", len(req.Prompt)),
		slog.Bool("visualized", output.VisualizationData != nil),
	)

	return &model.GenerationResult{
		Content:           output.Text,
		ContentID:         &artifact.ID,
		VisualizationData: output.VisualizationData,
	}, nil
}

// reject turns a moderation verdict into the policy-violation error returned
// to the caller, with a best-effort compliant rewrite attached.
func (s *GenerationService) reject(ctx context.Context, req model.GenerationRequest, verdict *model.ClassificationResult) error {
	metrics.GenerationsTotal.WithLabelValues("blocked").Inc()
	for _, category := range verdict.Categories {
		metrics.PolicyViolationsTotal.WithLabelValues(category).Inc()
	}
	s.logger.Info("prompt rejected by moderation",
		slog.String("user_id", req.UserID),
		slog.Int("prompt_len", len(req.Prompt)),
		slog.Any("categories", verdict.Categories),
		slog.Bool("degraded", verdict.Degraded),
	)

	return &apperror.PolicyViolation{
		Explanation: verdict.Explanation,
		Phrases:     verdict.HaramPhrases,
		Suggestion:  s.remediator.SuggestAlternative(ctx, req.Prompt, verdict.HaramPhrases),
	}
}

// artifactTitle prefers the advisor's title and falls back to a truncated
// prompt.
func artifactTitle(prompt string, advice *model.VisualizationAdvice) string {
	if advice != nil && advice.Title != "" {
		return advice.Title
	}
	if len(prompt) <= MaxTitleLength {
		return prompt
	}
	return prompt[:MaxTitleLength]
}
