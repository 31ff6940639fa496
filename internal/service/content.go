package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ContentService reads stored content artifacts.
type ContentService struct {
	artifacts repository.ArtifactRepository
	logger    *slog.Logger
}

func NewContentService(artifacts repository.ArtifactRepository, logger *slog.Logger) *ContentService {
	return &ContentService{artifacts: artifacts, logger: logger}
}

// GetByID returns one artifact or apperror.ErrNotFound.
func (s *ContentService) GetByID(ctx context.Context, id string) (*model.ContentArtifact, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "content ID is required")
	}
	return s.artifacts.GetArtifactByID(ctx, id)
}

// ListByUser returns a page of the user's artifacts, newest first.
func (s *ContentService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.ContentArtifact, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	artifacts, err := s.artifacts.ListArtifactsByUser(ctx, userID, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("listing content failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return artifacts, nil
}
