// Package repository persists fused tables.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/pkg/metrics"
)

// Snapshot is one stored refresh result.
type Snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Table     *fusion.Table
}

// Store saves and loads fused tables.
type Store interface {
	// Save persists a snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// Latest returns the most recently saved snapshot.
	// Returns ErrNotFound if nothing has been saved.
	Latest(ctx context.Context) (Snapshot, error)
}

func observe(op string, started time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(started).Milliseconds()))
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}
