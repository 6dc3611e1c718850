package recon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/admissaoprv/secretaria-backend/classify"
	"github.com/admissaoprv/secretaria-backend/coldstorage"
	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/admissaoprv/secretaria-backend/roster"
	"github.com/admissaoprv/secretaria-backend/utils"
	"github.com/gin-gonic/gin"
)

// PaymentNotificationHandler processes PagSeguro PIX webhooks. Response
// contract: 200 {"status":"success"} on a reconciled event, 200
// {"status":"ignored"} for anything outside the gate, 500
// {"status":"error"} when the roster cannot be read.
func PaymentNotificationHandler(engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event models.PaymentEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
			return
		}

		ctx := utils.SetTransactionIdInContext(c.Request.Context(), event.TransactionId)
		switch engine.Reconcile(ctx, event) {
		case OutcomeIgnored:
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		case OutcomeRosterFetchFailed:
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "success"})
		}
	}
}

// ReceiptIntake stores payment receipts forwarded over WhatsApp. Strictly
// a pass-through: download the media, ship it to cold storage, log it.
type ReceiptIntake struct {
	Uploader       coldstorage.Uploader
	Audit          AuditLog
	Notifier       Notifier
	OperatorNumber string
	HTTP           *http.Client
}

func (r *ReceiptIntake) httpClient() *http.Client {
	if r.HTTP != nil {
		return r.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func ReceiveReceiptHandler(intake *ReceiptIntake) gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg WebhookMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
			return
		}
		m := msg.Body.Message
		if !m.HasMedia {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		ctx := c.Request.Context()
		stored, err := intake.store(ctx, m.MediaUrl, m.Mimetype, m.From)
		if err != nil {
			intake.Notifier.Send(ctx, intake.OperatorNumber, "Erro ao armazenar comprovante: "+err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
			return
		}
		if !stored {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		intake.Audit.Record(ctx, models.AuditReceiptStored, m.From)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// store downloads the media and uploads it to cold storage. Returns
// (false, nil) when the media host answered with a non-200, which the
// webhook treats as ignorable.
func (r *ReceiptIntake) store(ctx context.Context, mediaURL, mimetype, from string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	extension := "jpg"
	if strings.Contains(mimetype, "pdf") {
		extension = "pdf"
	}
	fileName := fmt.Sprintf("comprovante_%s_%s.%s", from, time.Now().Format(time.RFC3339), extension)
	filePath := filepath.Join(os.TempDir(), fileName)

	out, err := os.Create(filePath)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(filePath)
		return false, err
	}
	if err := out.Close(); err != nil {
		os.Remove(filePath)
		return false, err
	}
	defer os.Remove(filePath)

	if err := r.Uploader.Upload(ctx, filePath, fileName, mimetype); err != nil {
		return false, err
	}
	return true, nil
}

// RegistrationConfirm routes enrollment confirmation texts through the
// classifier and alerts the secretaria when a known student confirms.
type RegistrationConfirm struct {
	Classifier     *classify.Client
	Roster         roster.Provider
	Audit          AuditLog
	Notifier       Notifier
	OperatorNumber string
}

func ConfirmRegistrationHandler(rc *RegistrationConfirm) gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg WebhookMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
			return
		}
		text := msg.Body.Message.Text
		from := msg.Body.Message.From
		if text == "" {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		ctx := c.Request.Context()

		// Prompt-injection guard: only ASCII reaches the model.
		confirmed, err := rc.Classifier.Classify(ctx, utils.StripNonASCII(text))
		if err != nil {
			if errors.Is(err, classify.ErrUnavailable) {
				rc.Notifier.Send(ctx, rc.OperatorNumber, "Erro na API Grok: "+err.Error())
				c.JSON(http.StatusOK, gin.H{"status": "ignored"})
				return
			}
			rc.Notifier.Send(ctx, rc.OperatorNumber, "Erro ao analisar matrícula: "+err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
			return
		}
		if !confirmed {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		students, err := rc.Roster.FetchRoster(ctx)
		if err != nil {
			rc.Notifier.Send(ctx, rc.OperatorNumber, "Erro ao analisar matrícula: "+err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
			return
		}

		for i := range students {
			if students[i].WhatsApp == from {
				rc.Notifier.Send(ctx, rc.OperatorNumber,
					fmt.Sprintf("Aluno(a) %s preencheu a ficha de matrícula e efetuou o pagamento do %s",
						students[i].Nome, students[i].Livro))
				rc.Audit.Record(ctx, models.AuditEnrollmentConfirmed, students[i].Nome)
				c.JSON(http.StatusOK, gin.H{"status": "success"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}
