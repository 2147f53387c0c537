package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/recipescout/internal/model"
)

// StatsFileName returns the file name stats are saved under, built from
// the start time and run id so that runs never overwrite each other.
func StatsFileName(stats *model.RunStatistics) string {
	id := stats.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("build_library_stats_%s_%s.json", stats.StartedAt.UTC().Format("20060102_150405"), id)
}

// SaveStatsFile writes stats as pretty JSON into dir and returns the path.
// The file is only readable by the owner.
func SaveStatsFile(dir string, stats *model.RunStatistics) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create stats directory: %w", err)
	}

	path := filepath.Join(dir, StatsFileName(stats))
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create stats file: %w", err)
	}

	if _, err := NewJSONWriter(f, WithPrettyPrint()).Write(stats); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write stats file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close stats file: %w", err)
	}
	return path, nil
}
