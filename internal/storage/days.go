// ABOUTME: Per-date JSON blobs for entries, dose logs, evening time, and extra meds.
// ABOUTME: Used as the whole store of record when no remote store is configured.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/anchor/internal/models"
)

// Blob key prefixes. Each is followed by a date key.
const (
	EntriesPrefix     = "entries:"
	MedLogsPrefix     = "med-logs:"
	EveningTimePrefix = "evening-time:"
	ExtraMedsPrefix   = "extra-meds:"

	// MedicationsConfigKey holds the standing medication configuration.
	MedicationsConfigKey = "medications-config"
)

// Days reads and writes whole days against a KV.
type Days struct {
	kv KV
}

// NewDays wraps kv.
func NewDays(kv KV) *Days {
	return &Days{kv: kv}
}

// medLogBlob is keyed "<medication>-<dose>".
type medLogBlob map[string]models.DoseLog

func doseBlobKey(k models.DoseKey) string {
	return k.MedicationID + "-" + strconv.Itoa(k.DoseNumber)
}

// Load returns every record stored for date. Missing blobs read as empty.
func (d *Days) Load(date models.DateKey) (*models.DayRecords, error) {
	day := models.NewDayRecords(date)

	if err := d.getJSON(EntriesPrefix+string(date), &day.Entries); err != nil {
		return nil, err
	}
	if day.Entries == nil {
		day.Entries = make(map[string]models.EntryValue)
	}

	var logs medLogBlob
	if err := d.getJSON(MedLogsPrefix+string(date), &logs); err != nil {
		return nil, err
	}
	for key, l := range logs {
		if l.MedicationID == "" {
			l.MedicationID, l.DoseNumber = splitDoseBlobKey(key)
		}
		day.DoseLogs = append(day.DoseLogs, l)
	}
	sort.Slice(day.DoseLogs, func(i, j int) bool {
		a, b := day.DoseLogs[i], day.DoseLogs[j]
		if a.MedicationID != b.MedicationID {
			return a.MedicationID < b.MedicationID
		}
		return a.DoseNumber < b.DoseNumber
	})

	var evening *time.Time
	if err := d.getJSON(EveningTimePrefix+string(date), &evening); err != nil {
		return nil, err
	}
	day.EveningTime = evening

	if err := d.getJSON(ExtraMedsPrefix+string(date), &day.ExtraMeds); err != nil {
		return nil, err
	}

	return day, nil
}

// Save writes each record type of day; empty types are deleted.
func (d *Days) Save(day *models.DayRecords) error {
	date := string(day.Date)

	if err := d.putOrDelete(EntriesPrefix+date, len(day.Entries) > 0, day.Entries); err != nil {
		return err
	}

	logs := make(medLogBlob, len(day.DoseLogs))
	for _, l := range day.DoseLogs {
		logs[doseBlobKey(l.Key())] = l
	}
	if err := d.putOrDelete(MedLogsPrefix+date, len(logs) > 0, logs); err != nil {
		return err
	}

	if err := d.putOrDelete(EveningTimePrefix+date, day.EveningTime != nil, day.EveningTime); err != nil {
		return err
	}

	return d.putOrDelete(ExtraMedsPrefix+date, len(day.ExtraMeds) > 0, day.ExtraMeds)
}

// Delete removes every record type for date.
func (d *Days) Delete(date models.DateKey) error {
	for _, prefix := range []string{EntriesPrefix, MedLogsPrefix, EveningTimePrefix, ExtraMedsPrefix} {
		if err := d.kv.Delete(prefix + string(date)); err != nil {
			return fmt.Errorf("delete %s%s: %w", prefix, date, err)
		}
	}
	return nil
}

// Dates returns the days in [from, to] that hold an entry or a medication log.
func (d *Days) Dates(from, to models.DateKey) ([]models.DateKey, error) {
	seen := make(map[models.DateKey]bool)
	for _, prefix := range []string{EntriesPrefix, MedLogsPrefix, ExtraMedsPrefix} {
		keys, err := d.kv.Keys(prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s keys: %w", prefix, err)
		}
		for _, k := range keys {
			date := models.DateKey(strings.TrimPrefix(k, prefix))
			if date.Before(from) || date.After(to) {
				continue
			}
			seen[date] = true
		}
	}

	dates := make([]models.DateKey, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates, nil
}

func (d *Days) getJSON(key string, dst any) error {
	data, err := d.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (d *Days) putOrDelete(key string, present bool, v any) error {
	if !present {
		if err := d.kv.Delete(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.kv.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func splitDoseBlobKey(key string) (string, int) {
	i := strings.LastIndex(key, "-")
	if i < 0 {
		return key, 1
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return key, 1
	}
	return key[:i], n
}
