package roster

import (
	"context"
	"fmt"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
)

// rosterRange covers Nome, Email, WhatsApp, Status, Livro. The first row
// is the header and is skipped.
const rosterRange = "Alunos!A:E"

type sheetsProvider struct{}

func NewSheetsProvider() Provider {
	return &sheetsProvider{}
}

func (p *sheetsProvider) FetchRoster(ctx context.Context) ([]models.Student, error) {
	svc, err := config.GetSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	sheetID, err := config.GetSheetID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := svc.Spreadsheets.Values.Get(sheetID, rosterRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	students := make([]models.Student, 0, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 {
			continue
		}
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		students = append(students, studentFromRow(cells))
	}
	return students, nil
}
