// Package querylog defines the listing-query audit record and its
// recorder. The engine records every executed listing with its duration so
// slow queries are visible operationally; recorded query text is the query
// shape only; bound parameter values never enter the log.
package querylog

import (
	"context"
	"time"

	"github.com/xraph/datagrid/id"
)

// Entry is a single recorded listing query.
type Entry struct {
	ID         id.ID         `json:"id"`
	RequestID  id.ID         `json:"request_id"`
	Entity     string        `json:"entity"`
	IdentityID string        `json:"identity_id"`
	Query      string        `json:"query"`
	Duration   time.Duration `json:"duration"`
	Slow       bool          `json:"slow"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Recorder receives query entries. Implementations must be safe for
// concurrent use; recording must never fail a request.
type Recorder interface {
	// Record stores an entry.
	Record(ctx context.Context, e *Entry)

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) []*Entry
}
