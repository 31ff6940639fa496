package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

// compile-time check that *DB implements repository.ArtifactRepository
var _ repository.ArtifactRepository = (*DB)(nil)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The pure-Go driver exposes no typed error for this, so we match the
// stable SQLite message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateArtifact inserts a generated artifact. Artifacts are immutable after
// creation, so there is no update path here.
func (db *DB) CreateArtifact(ctx context.Context, artifact *model.ContentArtifact) error {
	artifact.ID = xid.New().String()
	artifact.CreatedAt = time.Now()

	// Store the raw JSON as TEXT; NULL when no visualization was emitted.
	var vis any
	if len(artifact.VisualizationData) > 0 {
		vis = string(artifact.VisualizationData)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO content_artifacts (id, user_id, title, content, visualization_data, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		artifact.ID,
		artifact.UserID,
		artifact.Title,
		artifact.Content,
		vis,
		artifact.Type,
		artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating artifact: %w", err)
	}

	return nil
}

// GetArtifactByID retrieves a single artifact, or apperror.ErrNotFound.
func (db *DB) GetArtifactByID(ctx context.Context, id string) (*model.ContentArtifact, error) {
	var a model.ContentArtifact
	var vis sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, visualization_data, type, created_at
		 FROM content_artifacts WHERE id = ?`,
		id,
	).Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.Content,
		&vis,
		&a.Type,
		&a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("artifact", id)
		}
		return nil, fmt.Errorf("sqlite: getting artifact %s: %w", id, err)
	}

	if vis.Valid {
		a.VisualizationData = []byte(vis.String)
	}

	return &a, nil
}

// ListArtifactsByUser returns a user's artifacts, newest first.
func (db *DB) ListArtifactsByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.ContentArtifact, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, content, visualization_data, type, created_at
		 FROM content_artifacts
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing artifacts for %s: %w", userID, err)
	}
	defer rows.Close()

	artifacts := make([]model.ContentArtifact, 0, limit)

	for rows.Next() {
		var a model.ContentArtifact
		var vis sql.NullString
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Title, &a.Content, &vis, &a.Type, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning artifact row: %w", err)
		}
		if vis.Valid {
			a.VisualizationData = []byte(vis.String)
		}
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating artifacts: %w", err)
	}

	return artifacts, nil
}
