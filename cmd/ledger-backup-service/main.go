package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/admissaoprv/secretaria-backend/coldstorage"
	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/ledger"
	"github.com/admissaoprv/secretaria-backend/notify"
	"github.com/admissaoprv/secretaria-backend/recon"
	"github.com/admissaoprv/secretaria-backend/utils"
	"github.com/sirupsen/logrus"
)

// Offsite backup daemon: runs the ledger backup every day at BACKUP_TIME
// (default 23:59) and, when enabled, also on demand via the ledger-backup
// Pub/Sub subscription. Snapshots are timestamped, so overlapping with the
// webhook service's inline backups is harmless.
func main() {
	requestBackup := flag.Bool("request-backup", false, "publish an on-demand backup request and exit")
	requestReason := flag.String("reason", "manual", "reason recorded with -request-backup")
	flag.Parse()

	logger := config.GetLogger()
	operatorNumber := config.GetOperatorNumber()
	if err := utils.ValidatePhoneNumber(operatorNumber); err != nil {
		logger.WithFields(logrus.Fields{"field": "OPERATOR_WHATSAPP_NUMBER"}).Warn(err)
	}

	if *requestBackup {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := recon.PublishBackupRequested(ctx, "ledger-backup-service", *requestReason); err != nil {
			logger.WithFields(logrus.Fields{"field": "request-backup"}).Fatal(err)
		}
		logger.Info("backup request published")
		return
	}

	uploader := coldstorage.NewUploaderFromEnv()
	store, err := ledger.NewStore(config.GetLedgerFile(), uploader)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "ledger"}).Fatal(err)
	}
	notifier := notify.NewClient(logger)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if config.BoolFromEnv("ENABLE_BACKUP_SUBSCRIPTION", false) {
		go receiveBackupRequests(sigCtx, store, notifier, operatorNumber, logger)
	}

	backupAt, err := parseBackupTime(config.StringFromEnv("BACKUP_TIME", "23:59"))
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "BACKUP_TIME"}).Fatal(err)
	}

	for {
		wait := time.Until(nextRun(time.Now(), backupAt))
		select {
		case <-sigCtx.Done():
			return
		case <-time.After(wait):
		}

		runBackup(sigCtx, store, notifier, operatorNumber, logger)
	}
}

func runBackup(ctx context.Context, store *ledger.Store, notifier *notify.Client, operatorNumber string, logger *logrus.Logger) {
	if err := store.Backup(ctx); err != nil {
		config.LogError(logger, "backup-service", "runBackup", "scheduled backup", nil, err)
		notifier.Send(ctx, operatorNumber, "Erro no backup do CSV: "+err.Error())
		return
	}
	logger.WithFields(logrus.Fields{"field": "backup"}).Info("ledger backup uploaded")
}

func receiveBackupRequests(ctx context.Context, store *ledger.Store, notifier *notify.Client, operatorNumber string, logger *logrus.Logger) {
	client, err := config.GetClient(ctx)
	if err != nil {
		config.LogError(logger, "backup-service", "receiveBackupRequests", "pubsub client", nil, err)
		return
	}

	topicName := config.StringFromEnv("LEDGER_BACKUP_TOPIC", "ledger-backup")
	topic, err := config.CreateTopicIfNotExists(client, topicName)
	if err != nil {
		config.LogError(logger, "backup-service", "receiveBackupRequests", "topic", topicName, err)
		return
	}

	subName := config.StringFromEnv("LEDGER_BACKUP_SUBSCRIPTION", "ledger-backup-worker")
	sub, err := config.CreateSubscriptionIfNotExists(client, subName, topic)
	if err != nil {
		config.LogError(logger, "backup-service", "receiveBackupRequests", "subscription", subName, err)
		return
	}

	err = sub.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
		payload, ok := recon.DecodeBackupPayload(msg.Data)
		if !ok {
			msg.Ack()
			return
		}
		logger.WithFields(logrus.Fields{
			"requested_by": payload.RequestedBy,
			"reason":       payload.Reason,
		}).Info("on-demand ledger backup")
		runBackup(msgCtx, store, notifier, operatorNumber, logger)
		msg.Ack()
	})
	if err != nil && ctx.Err() == nil {
		config.LogError(logger, "backup-service", "receiveBackupRequests", "receive", subName, err)
	}
}

func parseBackupTime(v string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("BACKUP_TIME must be HH:MM, got %q", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("BACKUP_TIME must be HH:MM, got %q", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("BACKUP_TIME must be HH:MM, got %q", v)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// nextRun returns the next occurrence of the configured time of day,
// strictly after now.
func nextRun(now time.Time, sinceMidnight time.Duration) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	run := midnight.Add(sinceMidnight)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
