package store

import (
	"context"
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// RecordToolPerformance implements toolrunner.PerformanceRecorder.
func (s *Store) RecordToolPerformance(ctx context.Context, tool string, elapsedSeconds float64) error {
	row := ToolPerformance{Tool: tool, ElapsedSeconds: elapsedSeconds, RecordedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return xerrors.WrapFatal(err, "recording tool performance for %s", tool)
	}
	return nil
}
