package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

func TestCreateArtifact_AndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	artifact := &model.ContentArtifact{
		UserID:            "u1",
		Title:             "Note on patience",
		Content:           "Patience is a virtue...",
		VisualizationData: json.RawMessage(`{"type":"list","items":["sabr"]}`),
		Type:              "essay",
	}

	if err := db.CreateArtifact(ctx, artifact); err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}
	if artifact.ID == "" {
		t.Fatal("CreateArtifact() did not set ID")
	}

	got, err := db.GetArtifactByID(ctx, artifact.ID)
	if err != nil {
		t.Fatalf("GetArtifactByID() error = %v", err)
	}
	if got.Content != artifact.Content {
		t.Errorf("Content = %q, want %q", got.Content, artifact.Content)
	}
	if string(got.VisualizationData) != string(artifact.VisualizationData) {
		t.Errorf("VisualizationData = %s, want %s", got.VisualizationData, artifact.VisualizationData)
	}
}

func TestCreateArtifact_NoVisualization(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	artifact := &model.ContentArtifact{
		UserID:  "u1",
		Content: "plain prose",
		Type:    "blog",
	}
	if err := db.CreateArtifact(ctx, artifact); err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}

	got, err := db.GetArtifactByID(ctx, artifact.ID)
	if err != nil {
		t.Fatalf("GetArtifactByID() error = %v", err)
	}
	if got.VisualizationData != nil {
		t.Errorf("VisualizationData = %s, want nil", got.VisualizationData)
	}
}

func TestGetArtifactByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetArtifactByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetArtifactByID() error = %v, want ErrNotFound", err)
	}
}

func TestListArtifactsByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := db.CreateArtifact(ctx, &model.ContentArtifact{
			UserID:  "u1",
			Content: "content",
			Type:    "essay",
		}); err != nil {
			t.Fatalf("CreateArtifact() error = %v", err)
		}
	}
	// Another user's artifact must not leak into u1's listing.
	if err := db.CreateArtifact(ctx, &model.ContentArtifact{
		UserID:  "u2",
		Content: "other",
	}); err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}

	artifacts, err := db.ListArtifactsByUser(ctx, "u1", repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListArtifactsByUser() error = %v", err)
	}
	if len(artifacts) != 3 {
		t.Errorf("len(artifacts) = %d, want 3", len(artifacts))
	}
	for _, a := range artifacts {
		if a.UserID != "u1" {
			t.Errorf("artifact %s belongs to %s, want u1", a.ID, a.UserID)
		}
	}
}
