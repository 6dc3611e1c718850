package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/admissaoprv/secretaria-backend/coldstorage"
	"github.com/admissaoprv/secretaria-backend/models"
)

// Header row of the payments CSV. TransactionID must stay the last column:
// the dedup scan keys on the final field of every row.
var Header = []string{"Data", "Nome", "WhatsApp", "Valor", "Status", "Livro", "TransactionID"}

type AppendResult int

const (
	Appended AppendResult = iota
	SkippedDuplicate
)

// Store is the durable payment ledger: a CSV file with a uniqueness
// guarantee on TransactionID. All rows are append-only; nothing is ever
// rewritten or removed from the primary file.
type Store struct {
	path     string
	uploader coldstorage.Uploader
	mu       sync.Mutex
}

// NewStore opens (creating if needed) the ledger at path. The uploader
// receives backup snapshots.
func NewStore(path string, uploader coldstorage.Uploader) (*Store, error) {
	s := &Store{path: path, uploader: uploader}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Append writes one entry unless its TransactionId already exists. The
// check and the write happen under one lock, so concurrent redeliveries of
// the same notification cannot double-append. The scan is linear over the
// whole file; fine at secretaria volume, the index is the upgrade path if
// that ever changes.
func (s *Store) Append(entry models.LedgerEntry) (AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return Appended, err
	}

	exists, err := s.containsTransaction(entry.TransactionId)
	if err != nil {
		return Appended, err
	}
	if exists {
		return SkippedDuplicate, nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Appended, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		entry.Date.Format(time.RFC3339),
		entry.Nome,
		entry.WhatsApp,
		entry.Valor,
		entry.Status,
		entry.Livro,
		entry.TransactionId,
	}
	if err := w.Write(row); err != nil {
		return Appended, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Appended, fmt.Errorf("append ledger row: %w", err)
	}
	return Appended, nil
}

// containsTransaction scans the last column of every row. Callers must
// hold s.mu.
func (s *Store) containsTransaction(txId string) (bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if row[len(row)-1] == txId {
			return true, nil
		}
	}
	return false, nil
}

// Rows returns every data row (header excluded). Used by tests and ops
// tooling; the reconciliation path never reads entries back.
func (s *Store) Rows() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}
