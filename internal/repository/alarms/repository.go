package alarms

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

var (
	// ErrNotFound is returned when no alarm has the requested ID.
	ErrNotFound = errors.New("alarm not found")
	// ErrStorageUnavailable wraps every failure of the underlying database.
	ErrStorageUnavailable = errors.New("alarm storage unavailable")
	// ErrCorruptRecord is returned when a stored row cannot be decoded into an alarm.
	ErrCorruptRecord = errors.New("corrupt alarm record")
)

// MutateFunc edits an alarm in place inside an Update transaction.
// Returning an error aborts the transaction without writing.
type MutateFunc func(a *alarm.Alarm) error

// Repository defines persistence operations for alarms.
type Repository interface {
	// List returns every stored alarm ordered by creation time.
	List(ctx context.Context) ([]*alarm.Alarm, error)
	// ListEnabled returns the alarms taking part in scheduling.
	ListEnabled(ctx context.Context) ([]*alarm.Alarm, error)
	// Get returns a single alarm or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error)
	// Save inserts or replaces an alarm after validating it.
	Save(ctx context.Context, a *alarm.Alarm) error
	// Delete removes an alarm or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
	// Update atomically reads, mutates and writes back one alarm.
	Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (*alarm.Alarm, error)
}
