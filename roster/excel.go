package roster

import (
	"context"
	"fmt"

	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/xuri/excelize/v2"
)

const excelSheetName = "Alunos"

// excelProvider reads the roster from a local .xlsx export of the Alunos
// sheet. Used when the service has to run without Google access.
type excelProvider struct {
	path string
}

func NewExcelProvider(path string) Provider {
	return &excelProvider{path: path}
}

func (p *excelProvider) FetchRoster(ctx context.Context) ([]models.Student, error) {
	f, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	students := make([]models.Student, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		students = append(students, studentFromRow(row))
	}
	return students, nil
}
