// Package store persists summarization run history.
package store

import (
	"context"
	"time"

	"github.com/tendersight/tender-cli/internal/model"
)

// Run is one persisted summarization run.
type Run struct {
	ID              string         `json:"id"`
	Portal          string         `json:"portal"`
	Files           []string       `json:"files"`
	Strategy        string         `json:"strategy"`
	EstimatedTokens int            `json:"estimated_tokens"`
	FieldsRefilled  int            `json:"fields_refilled"`
	IsValid         bool           `json:"is_valid"`
	Envelope        map[string]any `json:"envelope,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Store defines the persistence interface for run history.
type Store interface {
	SaveRun(ctx context.Context, meta model.RunMetadata, envelope map[string]any) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
