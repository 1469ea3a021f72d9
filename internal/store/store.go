// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"polymarket-copytrader/internal/models"
)

// DataStore defines the interface for data persistence. Follows and copy
// records are append-only audit state; poll marks let pollers resume after
// a restart.
type DataStore interface {
	// Follows
	SaveFollow(ctx context.Context, follow *models.Follow) error
	UpdateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, id string) (*models.Follow, error)
	GetActiveFollows(ctx context.Context) ([]models.Follow, error)

	// Copy records
	SaveCopyRecord(ctx context.Context, record *models.CopyRecord) error
	HasCopyRecord(ctx context.Context, followID, sourceTradeID string) (bool, error)
	GetCopyRecords(ctx context.Context, filter RecordFilter) ([]models.CopyRecord, error)

	// Poll marks
	LoadMark(followID string) (time.Time, error)
	SaveMark(followID string, mark time.Time) error

	// Lifecycle
	Close() error
}

// RecordFilter represents filters for querying copy records.
type RecordFilter struct {
	FollowID  string
	Decision  models.CopyDecision
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
