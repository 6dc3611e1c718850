package auditlog

import (
	"context"
	"time"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/sirupsen/logrus"
)

// Appender persists one audit row. The default implementation targets the
// Logs sheet; tests swap in a fake.
type Appender interface {
	Append(ctx context.Context, record models.AuditRecord) error
}

// OperatorNotifier is the slice of the messaging client the audit log
// needs to report its own failures.
type OperatorNotifier interface {
	Send(ctx context.Context, number, text string) bool
}

// Logger is the append-only action trail. Record never returns an error:
// audit logging must not break the reconciliation path, so failures are
// reported to the operator instead.
type Logger struct {
	appender       Appender
	notifier       OperatorNotifier
	operatorNumber string
	logg           *logrus.Logger
}

func New(appender Appender, notifier OperatorNotifier, operatorNumber string, logger *logrus.Logger) *Logger {
	return &Logger{
		appender:       appender,
		notifier:       notifier,
		operatorNumber: operatorNumber,
		logg:           logger,
	}
}

func (l *Logger) Record(ctx context.Context, action, detail string) {
	record := models.AuditRecord{Timestamp: time.Now(), Action: action, Detail: detail}
	if err := l.appender.Append(ctx, record); err != nil {
		config.LogError(l.logg, "auditlog", "Record", action, detail, err)
		l.notifier.Send(ctx, l.operatorNumber, "Erro ao registrar log: "+err.Error())
	}
}
