package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/config"
)

func TestBackupService(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()

	db, err := NewDB(filepath.Join(dir, "shareit.db"), &logger)
	require.NoError(t, err)
	defer db.Close()
	createTestUser(t, db, "Alice", "alice@example.com")

	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(db, config.BackupConfig{Enabled: true, RetentionDays: 1, StoragePath: backupDir}, &logger)

	path, err := svc.PerformBackup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)

	restored, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer restored.Close()
	users, err := restored.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	old := filepath.Join(backupDir, backupPrefix+"old.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().AddDate(0, 0, -3)
	require.NoError(t, os.Chtimes(old, past, past))

	assert.Equal(t, 1, svc.CleanupOldBackups())
	assert.NoFileExists(t, old)
	assert.FileExists(t, path)
}

func TestBackupService_DisabledStartReturns(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBackupService(db, config.BackupConfig{Enabled: false}, nil)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service did not return")
	}
}
