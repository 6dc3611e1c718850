package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/admissaoprv/secretaria-backend/models"
)

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	content map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{content: map[string][]byte{}}
}

func (f *fakeUploader) Upload(ctx context.Context, localPath, name, mimeType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.uploads = append(f.uploads, name)
	f.content[name] = data
	return nil
}

func newTestStore(t *testing.T, uploader *fakeUploader) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagamentos.csv")
	s, err := NewStore(path, uploader)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func entry(txId string) models.LedgerEntry {
	return models.LedgerEntry{
		Date:          time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Nome:          "maria silva",
		WhatsApp:      "+5563911111111",
		Valor:         "50",
		Status:        models.StudentStatusAtivo,
		Livro:         "X",
		TransactionId: txId,
	}
}

func TestNewStoreWritesHeader(t *testing.T) {
	s := newTestStore(t, newFakeUploader())

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Data,Nome,WhatsApp,Valor,Status,Livro,TransactionID\n" {
		t.Errorf("unexpected header: %q", string(data))
	}
}

func TestNewStoreKeepsExistingFile(t *testing.T) {
	uploader := newFakeUploader()
	s := newTestStore(t, uploader)
	if _, err := s.Append(entry("T1")); err != nil {
		t.Fatal(err)
	}

	// Reopening must not truncate.
	s2, err := NewStore(s.Path(), uploader)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := s2.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows after reopen = %d, want 1", len(rows))
	}
}

func TestAppendAndDedup(t *testing.T) {
	s := newTestStore(t, newFakeUploader())

	res, err := s.Append(entry("T1"))
	if err != nil {
		t.Fatal(err)
	}
	if res != Appended {
		t.Fatalf("first append = %v, want Appended", res)
	}

	res, err = s.Append(entry("T1"))
	if err != nil {
		t.Fatal(err)
	}
	if res != SkippedDuplicate {
		t.Fatalf("second append = %v, want SkippedDuplicate", res)
	}

	rows, err := s.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row[len(row)-1] != "T1" {
		t.Errorf("transaction id must be the last column, got %v", row)
	}
	if row[4] != models.StudentStatusAtivo {
		t.Errorf("status column = %q, want ATIVO", row[4])
	}
}

func TestAppendDistinctTransactions(t *testing.T) {
	s := newTestStore(t, newFakeUploader())

	for _, id := range []string{"T1", "T2", "T3"} {
		if res, err := s.Append(entry(id)); err != nil || res != Appended {
			t.Fatalf("append %s: res=%v err=%v", id, res, err)
		}
	}
	rows, err := s.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
}

func TestConcurrentRedeliveriesAppendOnce(t *testing.T) {
	s := newTestStore(t, newFakeUploader())

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Append(entry("T-race")); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	rows, err := s.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows after concurrent redeliveries = %d, want exactly 1", len(rows))
	}
}

func TestBackupUploadsSnapshotAndKeepsPrimary(t *testing.T) {
	uploader := newFakeUploader()
	s := newTestStore(t, uploader)
	if _, err := s.Append(entry("T1")); err != nil {
		t.Fatal(err)
	}

	if err := s.Backup(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(uploader.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(uploader.uploads))
	}
	name := uploader.uploads[0]
	if filepath.Ext(name) != ".csv" {
		t.Errorf("unexpected backup name %q", name)
	}

	primary, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("primary file must be retained: %v", err)
	}
	if string(uploader.content[name]) != string(primary) {
		t.Error("backup content must equal the primary file")
	}

	// The local snapshot is removed after upload.
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the primary file to remain, found %d entries", len(entries))
	}
}

func TestBackupFailureRemovesSnapshot(t *testing.T) {
	uploader := newFakeUploader()
	uploader.err = errors.New("offsite down")
	s := newTestStore(t, uploader)

	if err := s.Backup(context.Background()); err == nil {
		t.Fatal("expected backup error")
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("snapshot must be cleaned up on failure, found %d entries", len(entries))
	}
}
