package core

// scheduler.go runs periodic exports of every kind.
//
// Each cycle writes one timestamped file per kind to the export directory,
// and to the archive when one is configured. A failed kind is logged and
// does not stop the remaining kinds or later cycles.

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExportAll exports every registered kind once, in import order, naming
// files "<kind>-<stamp>.csv". It returns the progress of each job and the
// first error.
func (s *Service) ExportAll(ctx context.Context, stamp string) ([]JobProgress, error) {
	var (
		results  []JobProgress
		firstErr error
	)
	for _, k := range All() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		p, err := s.Export(ctx, k.Key, fmt.Sprintf("%s-%s.csv", k.Key, stamp))
		results = append(results, p)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}

// StartExportScheduler exports every kind each interval until ctx is
// cancelled. The first cycle runs after one interval.
func (s *Service) StartExportScheduler(ctx context.Context, interval time.Duration) {
	slog.Info("export scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("export scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduledExport(ctx)
		}
	}
}

func (s *Service) runScheduledExport(ctx context.Context) {
	start := time.Now()
	stamp := s.now().UTC().Format("20060102-150405")

	results, err := s.ExportAll(ctx, stamp)
	if err != nil {
		slog.Error("scheduled export failed", "error", err)
	}

	records := 0
	for _, p := range results {
		records += p.Records
	}
	slog.Info("scheduled export completed",
		"kinds", len(results),
		"records", records,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
