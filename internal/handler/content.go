package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/identity"
	"github.com/halalchat/backend/internal/model"
)

// GenerationRunner is the slice of GenerationService the handler needs.
type GenerationRunner interface {
	Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error)
}

// ContentReader reads stored artifacts.
type ContentReader interface {
	GetByID(ctx context.Context, id string) (*model.ContentArtifact, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.ContentArtifact, error)
}

// ContentHandler serves generation requests and artifact reads.
type ContentHandler struct {
	generations GenerationRunner
	contents    ContentReader
	logger      *slog.Logger
}

func NewContentHandler(generations GenerationRunner, contents ContentReader, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		generations: generations,
		contents:    contents,
		logger:      logger,
	}
}

// HandleGenerate runs the generation pipeline.
//
// POST /api/generate-content
// Body: {prompt, negativePrompt?, wordCount?, tone?, toolType?, userId}
// 200: {content, contentId, visualizationData}
// 400 missing prompt/userId, 403 insufficient credits or policy violation,
// 500 upstream failure.
func (h *ContentHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	// A verified token must match the user being charged. A missing userId
	// is a validation problem first; the service rejects it with a 400.
	if authedID, ok := identity.UserIDFromContext(r.Context()); ok && req.UserID != "" && authedID != req.UserID {
		writeError(w, apperror.Forbidden("token subject does not match userId"))
		return
	}

	result, err := h.generations.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetByID returns one artifact.
//
// GET /api/content/{id}
func (h *ContentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.contents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

// HandleListByUser returns a page of the user's artifacts.
//
// GET /api/users/{userId}/content?limit=&offset=
func (h *ContentHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	artifacts, err := h.contents.ListByUser(r.Context(), r.PathValue("userId"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifacts)
}
