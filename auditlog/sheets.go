package auditlog

import (
	"context"
	"time"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
	"google.golang.org/api/sheets/v4"
)

const logsRange = "Logs!A:C"

type sheetsAppender struct{}

// NewSheetsAppender writes audit rows to the Logs tab of the secretaria
// spreadsheet.
func NewSheetsAppender() Appender {
	return &sheetsAppender{}
}

func (a *sheetsAppender) Append(ctx context.Context, record models.AuditRecord) error {
	svc, err := config.GetSheetsService(ctx)
	if err != nil {
		return err
	}
	sheetID, err := config.GetSheetID()
	if err != nil {
		return err
	}

	body := &sheets.ValueRange{
		Values: [][]interface{}{{record.Timestamp.Format(time.RFC3339), record.Action, record.Detail}},
	}
	_, err = svc.Spreadsheets.Values.Append(sheetID, logsRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
