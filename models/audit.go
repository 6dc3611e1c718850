package models

import "time"

// Audit action labels written to the Logs sheet. The Portuguese literals
// are load-bearing: the secretaria filters the sheet on them.
const (
	AuditPaymentConfirmedActive   = "Pagamento Confirmado (Ativo)"
	AuditPaymentConfirmedInactive = "Pagamento Confirmado (Inativo)"
	AuditEnrollmentRequest        = "Solicitação de Matrícula"
	AuditEnrollmentConfirmed      = "Confirmação de Matrícula"
	AuditReceiptStored            = "Comprovante Armazenado"
	AuditMessageSendFailed        = "Erro ao enviar mensagem"
)

// AuditRecord is one Logs row. The stream is append-only and tolerates
// duplicates; it is a diagnostic trail, not a ledger.
type AuditRecord struct {
	Timestamp time.Time
	Action    string
	Detail    string
}
