package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// RunLogRetention controls pruning of per-run daemon log files.
type RunLogRetention struct {
	Dir     string
	Pattern string
	// Current is never removed, whatever its age.
	Current string
	// Days is the maximum age; zero disables age-based pruning.
	Days int
	// KeepNewest files survive regardless of age.
	KeepNewest int
}

type runLogFile struct {
	path    string
	modTime time.Time
}

// PruneRunLogs deletes run logs older than the retention window and returns
// how many were removed. Failures are logged and skipped.
func PruneRunLogs(logger *slog.Logger, r RunLogRetention) int {
	if r.Days <= 0 || r.Dir == "" {
		return 0
	}
	pattern := r.Pattern
	if pattern == "" {
		pattern = "*.log"
	}
	matches, err := filepath.Glob(filepath.Join(r.Dir, pattern))
	if err != nil {
		return 0
	}
	current, _ := filepath.Abs(r.Current)

	files := make([]runLogFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if abs, _ := filepath.Abs(path); abs == current {
			continue
		}
		files = append(files, runLogFile{path: path, modTime: info.ModTime()})
	}
	slices.SortFunc(files, func(a, b runLogFile) int { return b.modTime.Compare(a.modTime) })
	if r.KeepNewest > 0 {
		files = files[min(r.KeepNewest, len(files)):]
	}

	cutoff := time.Now().AddDate(0, 0, -r.Days)
	removed := 0
	for _, f := range files {
		if !f.modTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			WarnWithContext(logger, "run log not pruned", "log_retention_failed",
				String("path", f.path),
				Error(err),
				String(FieldErrorHint, "check ownership of paths.log_dir"),
				String(FieldImpact, "old run log stays on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Info("run logs pruned",
			Int("removed", removed),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
