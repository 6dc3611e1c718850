package roster

import (
	"context"
	"errors"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
)

// ErrUnavailable wraps every roster fetch failure. A reconciliation that
// cannot see the roster must abort; callers test with errors.Is.
var ErrUnavailable = errors.New("roster unavailable")

// Provider returns the current Alunos roster. Every call is a fresh fetch;
// the result is the authoritative snapshot for exactly one request.
type Provider interface {
	FetchRoster(ctx context.Context) ([]models.Student, error)
}

const (
	ProviderSheets = "sheets"
	ProviderExcel  = "excel"
)

// NewProviderFromEnv selects the roster source. Google Sheets is the
// default; a local .xlsx export can be used offline.
func NewProviderFromEnv() Provider {
	switch config.StringFromEnv("ROSTER_PROVIDER", ProviderSheets) {
	case ProviderExcel:
		return NewExcelProvider(config.StringFromEnv("ROSTER_XLSX_FILE", "alunos.xlsx"))
	default:
		return NewSheetsProvider()
	}
}

// studentFromRow maps one Alunos row (Nome, Email, WhatsApp, Status,
// Livro) to a Student. Short rows are padded so a half-filled sheet line
// does not abort the whole fetch.
func studentFromRow(row []string) models.Student {
	padded := make([]string, 5)
	copy(padded, row)
	return models.Student{
		Nome:     padded[0],
		Email:    padded[1],
		WhatsApp: padded[2],
		Status:   padded[3],
		Livro:    padded[4],
	}
}
