package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/ledger"
	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/admissaoprv/secretaria-backend/roster"
	"github.com/sirupsen/logrus"
)

// Outcome classifies one reconciliation attempt.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeRosterFetchFailed
	OutcomeConfirmedActive
	OutcomeConfirmedInactive
	OutcomeEnrollmentRequested
)

// Notifier is the slice of the messaging client the engine drives.
// Delivery is best-effort; the bool is advisory.
type Notifier interface {
	Send(ctx context.Context, number, text string) bool
}

// AuditLog records one action per state transition. Never fails toward
// the caller.
type AuditLog interface {
	Record(ctx context.Context, action, detail string)
}

// Ledger is the slice of the payment store the engine drives. Append
// dedups internally; redelivered events are a silent skip.
type Ledger interface {
	Append(entry models.LedgerEntry) (ledger.AppendResult, error)
	Backup(ctx context.Context) error
}

const (
	msgPaymentConfirmed = "Pagamento confirmado"
	msgWelcomeBack      = "Seja bem vindo(a) de volta, bons estudos. Pagamento efetuado"
)

func enrollmentMessage(formURL string) string {
	return "Você ainda não fez sua matrícula, preencha a ficha de inscrição, " +
		"seu pagamento só será confirmado após o preenchimento da ficha de inscrição. " +
		"Me informa assim que preencher a ficha de inscrição. Link: " + formURL
}

// Engine orchestrates one payment reconciliation: roster snapshot, fuzzy
// match, ledger append, notification branch, audit record, backup. All
// collaborators are injected once at startup; the engine keeps no mutable
// state of its own.
type Engine struct {
	roster         roster.Provider
	ledger         Ledger
	notifier       Notifier
	audit          AuditLog
	operatorNumber string
	formURL        string
	logg           *logrus.Logger
}

func NewEngine(rosterProvider roster.Provider, store Ledger, notifier Notifier, audit AuditLog, operatorNumber, formURL string, logger *logrus.Logger) *Engine {
	return &Engine{
		roster:         rosterProvider,
		ledger:         store,
		notifier:       notifier,
		audit:          audit,
		operatorNumber: operatorNumber,
		formURL:        formURL,
		logg:           logger,
	}
}

// Reconcile handles one inbound payment event synchronously and to
// completion. Only the roster fetch is fatal; every other side effect is
// individually best-effort and reported to the operator on failure. The
// ledger append is never rolled back by a later notification failure.
func (e *Engine) Reconcile(ctx context.Context, event models.PaymentEvent) Outcome {
	if !event.IsPixSuccess() {
		return OutcomeIgnored
	}

	students, err := e.roster.FetchRoster(ctx)
	if err != nil {
		config.LogError(e.logg, "recon", "Reconcile", "roster fetch", event.TransactionId, err)
		e.notifier.Send(ctx, e.operatorNumber, "Erro ao consultar planilha: "+err.Error())
		return OutcomeRosterFetchFailed
	}

	student := ResolveStudent(event.Sender.Name, students)
	e.appendLedger(ctx, event, student)

	var out Outcome
	switch {
	case student == nil:
		// The legacy fallback preferred a matched student's contact when
		// the sender phone was empty; no student can exist in this
		// branch, so it collapses to the sender phone (possibly empty).
		recipient := event.Sender.Phone
		e.notifier.Send(ctx, recipient, enrollmentMessage(e.formURL))
		e.audit.Record(ctx, models.AuditEnrollmentRequest, event.Sender.Name)
		out = OutcomeEnrollmentRequested

	case student.IsActive():
		e.notifier.Send(ctx, student.WhatsApp, msgPaymentConfirmed)
		e.notifier.Send(ctx, e.operatorNumber,
			fmt.Sprintf("Aluno(a) %s, pagamento efetuado - %s", student.Nome, student.Livro))
		e.audit.Record(ctx, models.AuditPaymentConfirmedActive, student.Nome)
		out = OutcomeConfirmedActive

	default:
		e.notifier.Send(ctx, student.WhatsApp, msgWelcomeBack)
		e.notifier.Send(ctx, e.operatorNumber,
			fmt.Sprintf("Aluno(a) %s INATIVA. Pagamento efetuado", student.Nome))
		e.audit.Record(ctx, models.AuditPaymentConfirmedInactive, student.Nome)
		out = OutcomeConfirmedInactive
	}

	if err := e.ledger.Backup(ctx); err != nil {
		config.LogError(e.logg, "recon", "Reconcile", "ledger backup", event.TransactionId, err)
		e.notifier.Send(ctx, e.operatorNumber, "Erro no backup do CSV: "+err.Error())
	}
	return out
}

func (e *Engine) appendLedger(ctx context.Context, event models.PaymentEvent, student *models.Student) {
	entry := models.LedgerEntry{
		Date:          time.Now(),
		Nome:          event.Sender.Name,
		WhatsApp:      event.Sender.Phone,
		Valor:         event.Amount.String(),
		Status:        models.StatusNaoMatriculado,
		Livro:         "",
		TransactionId: event.TransactionId,
	}
	if student != nil {
		entry.WhatsApp = student.WhatsApp
		entry.Status = student.Status
		entry.Livro = student.Livro
	}

	if _, err := e.ledger.Append(entry); err != nil {
		config.LogError(e.logg, "recon", "appendLedger", "csv append", event.TransactionId, err)
		e.notifier.Send(ctx, e.operatorNumber, "Erro ao registrar pagamento no CSV: "+err.Error())
	}
}
