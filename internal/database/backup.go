package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/config"
)

var ErrBackupUnsupported = errors.New("backups are only supported for sqlite")

const backupPrefix = "shareit_"

// BackupService writes timestamped copies of the SQLite file and prunes old ones.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger zerolog.Logger
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "backup").Logger()
	}
	return &BackupService{db: db, config: cfg, logger: l}
}

// Start runs a backup immediately and then every configured interval until ctx ends.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := time.Duration(s.config.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	s.logger.Info().Dur("interval", interval).Str("path", s.config.StoragePath).Msg("backup service started")

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a new backup file and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if s.db.Driver() != config.DriverSQLite {
		return "", ErrBackupUnsupported
	}
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.db", backupPrefix, time.Now().UTC().Format("20060102_150405.000"))
	backupPath := filepath.Join(s.config.StoragePath, name)

	s.logger.Info().Str("path", backupPath).Msg("performing database backup")

	quoted := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		if err := s.copyFile(backupPath); err != nil {
			return "", err
		}
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return backupPath, nil
}

func (s *BackupService) copyFile(backupPath string) error {
	if s.db.Path() == "" || s.db.Path() == ":memory:" {
		return errors.New("no database file to copy")
	}
	source, err := os.Open(s.db.Path())
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	// Not atomic if writers are active.
	_, err = io.Copy(destination, source)
	return err
}

// CleanupOldBackups removes backup files older than the retention window.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory")
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}
		info, err := file.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name()).Msg("failed to delete old backup")
			continue
		}
		s.logger.Info().Str("file", file.Name()).Msg("old backup deleted")
		removed++
	}
	return removed
}
