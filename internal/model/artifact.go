package model

import (
	"encoding/json"
	"time"
)

// ContentArtifact is one piece of generated content. Created once per
// successful generation and owned by the requesting user.
//
// VisualizationData is the optional structured block the generator emits
// after the sentinel marker; it is stored as raw JSON and passed through to
// the frontend's charting layer untouched.
type ContentArtifact struct {
	ID                string          `json:"id"                          db:"id"`
	UserID            string          `json:"userId"                      db:"user_id"`
	Title             string          `json:"title"                       db:"title"`
	Content           string          `json:"content"                     db:"content"`
	VisualizationData json.RawMessage `json:"visualizationData,omitempty" db:"visualization_data"`
	Type              string          `json:"type"                        db:"type"`
	CreatedAt         time.Time       `json:"createdAt"                   db:"created_at"`
}
