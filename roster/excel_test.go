package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/xuri/excelize/v2"
)

func writeRosterFile(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(excelSheetName); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(excelSheetName, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "alunos.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExcelProviderFetchRoster(t *testing.T) {
	path := writeRosterFile(t, [][]string{
		{"Nome", "Email", "WhatsApp", "Status", "Livro"},
		{"Maria Silva", "maria@example.org", "+5563911111111", "ATIVO", "X"},
		{"Pedro Alves", "", "+5563922222222", "INATIVO"},
	})

	p := NewExcelProvider(path)
	students, err := p.FetchRoster(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(students) != 2 {
		t.Fatalf("students = %d, want 2", len(students))
	}
	if students[0].Nome != "Maria Silva" || students[0].Status != models.StudentStatusAtivo {
		t.Errorf("unexpected first student: %+v", students[0])
	}
	// Short row is padded, not fatal.
	if students[1].Livro != "" {
		t.Errorf("expected empty livro for the short row, got %q", students[1].Livro)
	}
}

func TestExcelProviderMissingFile(t *testing.T) {
	p := NewExcelProvider(filepath.Join(t.TempDir(), "nope.xlsx"))
	_, err := p.FetchRoster(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
