package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/service"
	"go.uber.org/zap"
)

const backupJobName = "dataset-backup"

// snapshotTimeout bounds one backup run; a stuck store call must not
// pile up runs behind the SkipIfStillRunning chain forever.
const snapshotTimeout = time.Minute

// RegisterBackupJob schedules periodic dataset snapshots. Each run
// copies the live document to <prefix>-<YYYY-MM-DD>.json in the same
// backing store. Failures are logged and the next run proceeds
// normally.
func RegisterBackupJob(s *Scheduler, datasetService *service.DatasetService, cfg *config.BackupConfig, logger *zap.Logger) error {
	return s.AddJob(backupJobName, cfg.CronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		name := fmt.Sprintf("%s-%s.json", cfg.Prefix, time.Now().UTC().Format("2006-01-02"))
		if err := datasetService.Snapshot(ctx, name); err != nil {
			logger.Error("dataset snapshot failed",
				zap.Error(err),
				zap.String("snapshot", name),
			)
			return
		}
		logger.Info("dataset snapshot written", zap.String("snapshot", name))
	})
}
