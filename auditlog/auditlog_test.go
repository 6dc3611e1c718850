package auditlog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
)

type fakeAppender struct {
	rows []models.AuditRecord
	err  error
}

func (f *fakeAppender) Append(ctx context.Context, record models.AuditRecord) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, record)
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(ctx context.Context, number, text string) bool {
	f.sent = append(f.sent, number+"|"+text)
	return true
}

func TestRecordAppends(t *testing.T) {
	appender := &fakeAppender{}
	notifier := &fakeNotifier{}
	l := New(appender, notifier, "+5500", config.GetLogger())

	l.Record(context.Background(), "Pagamento Confirmado (Ativo)", "Maria Silva")

	if len(appender.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(appender.rows))
	}
	if appender.rows[0].Action != "Pagamento Confirmado (Ativo)" || appender.rows[0].Detail != "Maria Silva" {
		t.Errorf("unexpected row: %+v", appender.rows[0])
	}
	if appender.rows[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no operator message expected on success, got %v", notifier.sent)
	}
}

func TestRecordFailureNotifiesOperator(t *testing.T) {
	appender := &fakeAppender{err: errors.New("sheet append denied")}
	notifier := &fakeNotifier{}
	l := New(appender, notifier, "+5500", config.GetLogger())

	// Must not panic, must not propagate.
	l.Record(context.Background(), "Solicitação de Matrícula", "Pedro")

	if len(notifier.sent) != 1 {
		t.Fatalf("operator messages = %d, want 1", len(notifier.sent))
	}
	if !strings.Contains(notifier.sent[0], "Erro ao registrar log") {
		t.Errorf("unexpected operator message %q", notifier.sent[0])
	}
	if !strings.HasPrefix(notifier.sent[0], "+5500|") {
		t.Errorf("alert must go to the operator number, got %q", notifier.sent[0])
	}
}
