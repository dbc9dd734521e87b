// ABOUTME: Contract for the hosted table store that holds the record of truth.
// ABOUTME: Three tables keyed by user and date; every write is an upsert on a natural key.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/anchor/internal/models"
)

// ErrNotConfigured is returned when no remote URL is set.
var ErrNotConfigured = errors.New("remote store not configured")

// NewExtraMed is the payload for logging a one-off medication.
type NewExtraMed struct {
	Name    string
	Dosage  string
	TakenAt time.Time
}

// Store is the remote table store. All reads filter on user id and date.
type Store interface {
	UpsertEntry(ctx context.Context, userID string, e models.Entry) error
	ListEntries(ctx context.Context, userID string, from, to models.DateKey) ([]models.Entry, error)

	UpsertDoseLog(ctx context.Context, userID string, date models.DateKey, l models.DoseLog) error
	ListDoseLogs(ctx context.Context, userID string, date models.DateKey) ([]models.DoseLog, error)

	UpsertEveningTime(ctx context.Context, userID string, date models.DateKey, takenAt time.Time) error
	GetEveningTime(ctx context.Context, userID string, date models.DateKey) (*time.Time, error)

	// InsertExtraMed stores a one-off medication and returns the store-assigned id.
	InsertExtraMed(ctx context.Context, userID string, date models.DateKey, m NewExtraMed) (string, error)
	ListExtraMeds(ctx context.Context, userID string, date models.DateKey) ([]models.ExtraMed, error)
	DeleteMedicationLog(ctx context.Context, userID, id string) error

	// ResetDay deletes every record type for one date.
	ResetDay(ctx context.Context, userID string, date models.DateKey) error
	// ActiveDates lists days in [from, to] with an entry or a medication log.
	ActiveDates(ctx context.Context, userID string, from, to models.DateKey) ([]models.DateKey, error)

	Close() error
}
