package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment gate values from the PagSeguro notification payload.
const (
	PaymentStatusSuccess = "SUCCESS"
	PaymentMethodPix     = "PIX"
)

// PaymentSender is the payer block of a PagSeguro notification.
type PaymentSender struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PaymentMethod carries the rail the payment came in on. Only PIX is
// reconciled; everything else is ignored.
type PaymentMethod struct {
	Type string `json:"type"`
}

// PaymentEvent is one inbound PagSeguro payment notification. The upstream
// notifier may redeliver the same TransactionId; redeliveries must be
// harmless at the ledger.
type PaymentEvent struct {
	TransactionId string          `json:"transaction_id"`
	Status        string          `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Sender        PaymentSender   `json:"sender"`
}

// IsPixSuccess reports whether the event passes the reconciliation gate.
func (e PaymentEvent) IsPixSuccess() bool {
	return e.Status == PaymentStatusSuccess && e.PaymentMethod.Type == PaymentMethodPix
}

// LedgerEntry is one row of the payments CSV. Rows are append-only and
// TransactionId is unique across the file.
type LedgerEntry struct {
	Date          time.Time
	Nome          string
	WhatsApp      string
	Valor         string
	Status        string
	Livro         string
	TransactionId string
}
