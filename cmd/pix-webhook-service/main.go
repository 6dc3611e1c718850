package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/admissaoprv/secretaria-backend/auditlog"
	"github.com/admissaoprv/secretaria-backend/classify"
	"github.com/admissaoprv/secretaria-backend/coldstorage"
	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/ledger"
	"github.com/admissaoprv/secretaria-backend/notify"
	"github.com/admissaoprv/secretaria-backend/recon"
	"github.com/admissaoprv/secretaria-backend/roster"
	"github.com/admissaoprv/secretaria-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PIX_WEBHOOK_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	operatorNumber := config.GetOperatorNumber()
	if err := utils.ValidatePhoneNumber(operatorNumber); err != nil {
		// Misconfigured alert routing still starts; sends will surface it.
		logger.WithFields(logrus.Fields{"field": "OPERATOR_WHATSAPP_NUMBER"}).Warn(err)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Collaborators are constructed once here and injected; nothing below
	// reaches for ambient service state.
	uploader := coldstorage.NewUploaderFromEnv()
	store, err := ledger.NewStore(config.GetLedgerFile(), uploader)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "ledger"}).Fatal(err)
	}

	notifier := notify.NewClient(logger)
	audit := auditlog.New(auditlog.NewSheetsAppender(), notifier, operatorNumber, logger)
	notifier.SetFailureRecorder(audit.Record)

	rosterProvider := roster.NewProviderFromEnv()
	engine := recon.NewEngine(rosterProvider, store, notifier, audit, operatorNumber, config.GetFormURL(), logger)

	receiptIntake := &recon.ReceiptIntake{
		Uploader:       uploader,
		Audit:          audit,
		Notifier:       notifier,
		OperatorNumber: operatorNumber,
	}
	registrationConfirm := &recon.RegistrationConfirm{
		Classifier:     classify.NewClient(),
		Roster:         rosterProvider,
		Audit:          audit,
		Notifier:       notifier,
		OperatorNumber: operatorNumber,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// cors.New rejects an empty origin list; lock down to the
			// enrollment site when nothing is configured.
			corsConfig.AllowOrigins = []string{"https://admissaoprv.com.br"}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")

	r.Use(cors.New(corsConfig))
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/pagseguro-notification", recon.PaymentNotificationHandler(engine))
	r.POST("/receive-comprovante", recon.ReceiveReceiptHandler(receiptIntake))
	r.POST("/confirm-registration", recon.ConfirmRegistrationHandler(registrationConfirm))

	// Pub/Sub push endpoint for on-demand ledger backups.
	r.POST("/pubsub/ledger-backup", recon.BackupPushHandler(store, notifier, operatorNumber))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"status":         c.Writer.Status(),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"latency":        latency.String(),
			"correlation_id": cid,
		}).Info("request")
	}
}
