// ABOUTME: gorm-backed Store over the hosted Postgres tables.
// ABOUTME: Upserts use ON CONFLICT on each table's natural key.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements Store with gorm.
type PostgresStore struct {
	db *gorm.DB
}

// Options configures OpenPostgres.
type Options struct {
	DSN         string
	AutoMigrate bool
}

// OpenPostgres prepares a connection pool for the remote database.
// Nothing is dialed here: an unreachable server shows up as per-call
// errors, which the tracker logs under each operation's policy.
func OpenPostgres(opts Options) (*PostgresStore, error) {
	if opts.DSN == "" {
		return nil, ErrNotConfigured
	}
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger:               logger.NewGormLogger(),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open remote: %w", err)
	}
	s := &PostgresStore{db: db}
	if opts.AutoMigrate {
		if err := s.Migrate(); err != nil {
			logger.Warn("remote schema migration skipped", "error", err)
		}
	}
	return s, nil
}

// NewPostgresStore wraps an open gorm handle.
func NewPostgresStore(db *gorm.DB, autoMigrate bool) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if autoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates or updates the three tables and their natural-key indexes.
func (s *PostgresStore) Migrate() error {
	if err := s.db.AutoMigrate(&dailyEntryRow{}, &medicationLogRow{}, &eveningMedTimeRow{}); err != nil {
		return fmt.Errorf("migrate remote schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertEntry(ctx context.Context, userID string, e models.Entry) error {
	row := entryToRow(userID, e)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "log_date"}, {Name: "activity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_boolean", "value_number", "value_text", "value_json", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert entry %s/%s: %w", e.Date, e.ActivityID, err)
	}
	return nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, userID string, from, to models.DateKey) ([]models.Entry, error) {
	var rows []dailyEntryRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, from, to).
		Order("log_date, activity_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]models.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToEntry(r))
	}
	return out, nil
}

func (s *PostgresStore) UpsertDoseLog(ctx context.Context, userID string, date models.DateKey, l models.DoseLog) error {
	row := doseToRow(userID, date, l)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "medication_id"}, {Name: "log_date"}, {Name: "dose_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"taken", "taken_at", "dosage_value_taken", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert dose %s#%d: %w", l.MedicationID, l.DoseNumber, err)
	}
	return nil
}

func (s *PostgresStore) ListDoseLogs(ctx context.Context, userID string, date models.DateKey) ([]models.DoseLog, error) {
	var rows []medicationLogRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND log_date = ? AND custom_med_name IS NULL", userID, date).
		Order("medication_id, dose_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}
	out := make([]models.DoseLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToDose(r))
	}
	return out, nil
}

func (s *PostgresStore) UpsertEveningTime(ctx context.Context, userID string, date models.DateKey, takenAt time.Time) error {
	row := eveningMedTimeRow{ID: uuid.New(), UserID: userID, LogDate: date, TakenAt: takenAt, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"taken_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert evening time: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEveningTime(ctx context.Context, userID string, date models.DateKey) (*time.Time, error) {
	var row eveningMedTimeRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND log_date = ?", userID, date).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get evening time: %w", err)
	}
	t := row.TakenAt
	return &t, nil
}

func (s *PostgresStore) InsertExtraMed(ctx context.Context, userID string, date models.DateKey, m NewExtraMed) (string, error) {
	name := m.Name
	takenAt := m.TakenAt
	row := medicationLogRow{
		ID:            uuid.New(),
		UserID:        userID,
		LogDate:       date,
		DoseNumber:    1,
		Taken:         true,
		TakenAt:       &takenAt,
		CustomMedName: &name,
		UpdatedAt:     time.Now(),
	}
	if m.Dosage != "" {
		dosage := m.Dosage
		row.DosageTaken = &dosage
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert extra med: %w", err)
	}
	return row.ID.String(), nil
}

// ListExtraMeds returns the day's extra meds in insertion order.
func (s *PostgresStore) ListExtraMeds(ctx context.Context, userID string, date models.DateKey) ([]models.ExtraMed, error) {
	var rows []medicationLogRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND log_date = ? AND custom_med_name IS NOT NULL", userID, date).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list extra meds: %w", err)
	}
	out := make([]models.ExtraMed, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToExtra(r))
	}
	return out, nil
}

func (s *PostgresStore) DeleteMedicationLog(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("medication log id %q: %w", id, err)
	}
	err = s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, uid).Delete(&medicationLogRow{}).Error
	if err != nil {
		return fmt.Errorf("delete medication log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResetDay(ctx context.Context, userID string, date models.DateKey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&dailyEntryRow{}, &medicationLogRow{}, &eveningMedTimeRow{}} {
			if err := tx.Where("user_id = ? AND log_date = ?", userID, date).Delete(model).Error; err != nil {
				return fmt.Errorf("reset day %s: %w", date, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) ActiveDates(ctx context.Context, userID string, from, to models.DateKey) ([]models.DateKey, error) {
	seen := make(map[models.DateKey]bool)
	for _, model := range []any{&dailyEntryRow{}, &medicationLogRow{}} {
		var dates []models.DateKey
		err := s.db.WithContext(ctx).Model(model).
			Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, from, to).
			Distinct().Pluck("log_date", &dates).Error
		if err != nil {
			return nil, fmt.Errorf("active dates: %w", err)
		}
		for _, d := range dates {
			seen[d] = true
		}
	}
	out := make([]models.DateKey, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
