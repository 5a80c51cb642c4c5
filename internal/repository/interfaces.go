package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/report"
)

// ErrNotFound is returned when a session is absent or has expired.
var ErrNotFound = errors.New("not found")

// SessionRecord is the transient state of one questionnaire run.
type SessionRecord struct {
	Session   *questionnaire.Session `json:"session"`
	Report    *report.Report         `json:"report,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// SessionRepo holds in-progress sessions until their TTL runs out.
type SessionRepo interface {
	Save(ctx context.Context, rec *SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

// NarrativeRepo caches generated narratives by prompt key.
type NarrativeRepo interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, text string) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
