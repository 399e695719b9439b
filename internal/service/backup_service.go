package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/monitoring"
)

// ─────────────────────────────────────────────────────────────
// Backup Service — scheduled JSON snapshots of the project list
// ─────────────────────────────────────────────────────────────

const (
	backupJob    = "projects-backup"
	backupPrefix = "projects-"
	backupSuffix = ".json"
	backupStamp  = "20060102T150405.000000000"
)

// ErrBackupRunning is returned when a backup is requested while one is in flight.
var ErrBackupRunning = errors.New("backup already running")

type BackupService struct {
	projects *ProjectStore
	dir      string
	keep     int
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time

	guard jobGuard
	cron  *cron.Cron
}

// NewBackupService writes snapshots into dir, keeping the newest keep files
// (0 keeps everything).
func NewBackupService(projects *ProjectStore, dir string, keep int, logger *zap.Logger, metrics *monitoring.Metrics) *BackupService {
	return &BackupService{
		projects: projects,
		dir:      dir,
		keep:     keep,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Start runs Backup on the cron schedule. An empty schedule disables it.
func (b *BackupService) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := b.Backup(ctx); err != nil && !errors.Is(err, ErrBackupRunning) {
			b.logger.Error("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	b.cron = c
	b.logger.Info("backups scheduled", zap.String("schedule", schedule), zap.String("dir", b.dir))
	return nil
}

// Stop halts the scheduler and waits for a running backup or ctx.
func (b *BackupService) Stop(ctx context.Context) {
	if b.cron != nil {
		stopped := b.cron.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
		}
	}
	if err := b.guard.Wait(ctx); err != nil {
		b.logger.Warn("backup still running at shutdown", zap.Error(err))
	}
}

// Backup writes the current project list to a timestamped file and prunes
// old ones. It returns the path written.
func (b *BackupService) Backup(ctx context.Context) (string, error) {
	release, ok := b.guard.Begin(backupJob)
	if !ok {
		since, _ := b.guard.Since(backupJob)
		return "", fmt.Errorf("%w (started %s)", ErrBackupRunning, since.Format(time.RFC3339))
	}
	defer release()

	path, err := b.write(ctx)
	b.metrics.ObserveBackup(err)
	if err != nil {
		return "", err
	}
	if err := b.prune(); err != nil {
		b.logger.Warn("backup prune failed", zap.Error(err))
	}
	b.logger.Info("projects backed up", zap.String("path", path))
	return path, nil
}

func (b *BackupService) write(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := backupPrefix + b.now().UTC().Format(backupStamp) + backupSuffix
	path := filepath.Join(b.dir, name)

	tmp, err := os.CreateTemp(b.dir, ".backup-*")
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := b.Export(ctx, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("finalize backup: %w", err)
	}
	return path, nil
}

// Export writes the project list as indented JSON.
func (b *BackupService) Export(ctx context.Context, w io.Writer) error {
	projects, err := b.projects.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(projects); err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	return nil
}

// Restore replaces the stored project list with the contents of a backup file.
func (b *BackupService) Restore(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read backup: %w", err)
	}
	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return 0, fmt.Errorf("parse backup %s: %w", path, err)
	}
	if err := b.projects.Import(ctx, projects); err != nil {
		return 0, err
	}
	return len(projects), nil
}

// List returns backup file paths, oldest first.
func (b *BackupService) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		out = append(out, filepath.Join(b.dir, name))
	}
	// fixed-width timestamps sort chronologically
	slices.Sort(out)
	return out, nil
}

func (b *BackupService) prune() error {
	if b.keep <= 0 {
		return nil
	}
	files, err := b.List()
	if err != nil {
		return err
	}
	for len(files) > b.keep {
		if err := os.Remove(files[0]); err != nil {
			return fmt.Errorf("remove old backup: %w", err)
		}
		files = files[1:]
	}
	return nil
}
