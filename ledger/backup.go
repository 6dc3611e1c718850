package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const backupTimestampLayout = "20060102_150405"

// Backup copies the ledger to a timestamped snapshot, ships it to cold
// storage and removes the local snapshot. The primary file is untouched.
// Snapshots are namespaced by timestamp, so the inline trigger and the
// scheduled one can overlap without conflict.
func (s *Store) Backup(ctx context.Context) error {
	backupName := fmt.Sprintf("pagamentos_backup_%s.csv", time.Now().Format(backupTimestampLayout))
	backupPath := filepath.Join(filepath.Dir(s.path), backupName)

	if err := s.snapshot(backupPath); err != nil {
		return fmt.Errorf("snapshot ledger: %w", err)
	}
	defer os.Remove(backupPath)

	if err := s.uploader.Upload(ctx, backupPath, backupName, "text/csv"); err != nil {
		return err
	}
	return nil
}

// snapshot copies the primary file under the store lock so a concurrent
// append cannot produce a torn row in the backup.
func (s *Store) snapshot(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
