// ABOUTME: Data migration between local storage backends.
// ABOUTME: Copies every blob from a source KV to a destination KV.

package storage

import (
	"fmt"
	"os"
	"strings"
)

// MigrateSummary holds counts of migrated blobs by kind.
type MigrateSummary struct {
	Entries      int
	MedLogs      int
	EveningTimes int
	ExtraMeds    int
	Config       int
	Other        int
}

// Total returns the number of blobs copied.
func (s *MigrateSummary) Total() int {
	return s.Entries + s.MedLogs + s.EveningTimes + s.ExtraMeds + s.Config + s.Other
}

// MigrateData copies all keys from src to dst storage.
// Existing destination keys with the same name are overwritten.
// With dryRun set nothing is written; the summary reports what would be copied.
func MigrateData(src, dst KV, dryRun bool) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	keys, err := src.Keys("")
	if err != nil {
		return nil, fmt.Errorf("list source keys: %w", err)
	}

	for _, key := range keys {
		value, err := src.Get(key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if !dryRun {
			if err := dst.Set(key, value); err != nil {
				return nil, fmt.Errorf("write %s: %w", key, err)
			}
		}

		switch {
		case strings.HasPrefix(key, EntriesPrefix):
			summary.Entries++
		case strings.HasPrefix(key, MedLogsPrefix):
			summary.MedLogs++
		case strings.HasPrefix(key, EveningTimePrefix):
			summary.EveningTimes++
		case strings.HasPrefix(key, ExtraMedsPrefix):
			summary.ExtraMeds++
		case key == MedicationsConfigKey:
			summary.Config++
		default:
			summary.Other++
		}
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
