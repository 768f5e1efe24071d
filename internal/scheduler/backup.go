package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/metrics"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
	"github.com/MrSnakeDoc/bookmarker/internal/utils"
)

// Exporter encodes the whole collection.
type Exporter interface {
	Export(ctx context.Context, format codec.Format) (service.Export, error)
}

// BackupStatus describes the most recent backup run.
type BackupStatus struct {
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
	Count     int       `json:"count"`
	Runs      int       `json:"runs"`
}

// BackupWriter periodically exports the collection to a file.
// Files are replaced atomically so a reader never sees a partial export.
type BackupWriter struct {
	exporter      Exporter
	path          string
	format        codec.Format
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu     sync.Mutex
	status BackupStatus
}

// NewBackupWriter creates a new backup writer
func NewBackupWriter(
	exporter Exporter,
	path string,
	format codec.Format,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BackupWriter {
	return &BackupWriter{
		exporter:      exporter,
		path:          path,
		format:        format,
		logger:        log.With(logger.String("component", "backup")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		status:        BackupStatus{Path: path, Format: string(format)},
	}
}

// Start writes a first backup and then runs on every tick or manual trigger.
// Failed runs are logged and retried on the next tick.
func (bw *BackupWriter) Start(ctx context.Context) {
	if err := bw.Run(ctx); err != nil {
		bw.logger.Error("initial backup failed", logger.Error(err))
	}

	ticker := time.NewTicker(bw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := bw.Run(ctx); err != nil {
					bw.logger.Error("failed to write backup", logger.Error(err))
				}
			case <-bw.manualTrigger:
				bw.logger.Info("manual backup triggered")
				if err := bw.Run(ctx); err != nil {
					bw.logger.Error("failed to write backup", logger.Error(err))
				}
			case <-bw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the writer
func (bw *BackupWriter) Stop() {
	bw.stopOnce.Do(func() { close(bw.stopCh) })
}

// Run exports the collection once and replaces the backup file
func (bw *BackupWriter) Run(ctx context.Context) error {
	exp, err := bw.exporter.Export(ctx, bw.format)
	if err == nil {
		err = writeAtomic(bw.path, exp.Data)
	}

	bw.mu.Lock()
	bw.status.LastRun = time.Now()
	bw.status.Runs++
	if err != nil {
		bw.status.LastError = err.Error()
	} else {
		bw.status.LastError = ""
		bw.status.Count = exp.Count
	}
	bw.mu.Unlock()

	if err != nil {
		metrics.Backups.WithLabelValues("error").Inc()
		return err
	}

	metrics.Backups.WithLabelValues("ok").Inc()
	bw.logger.Info("backup written",
		logger.String("path", bw.path),
		logger.String("format", string(bw.format)),
		logger.Int("count", exp.Count))
	return nil
}

// Status returns a snapshot of the last run
func (bw *BackupWriter) Status() BackupStatus {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.status
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			utils.Close(tmp)
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync backup: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace backup: %w", err)
	}
	return nil
}
