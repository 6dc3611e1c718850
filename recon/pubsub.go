package recon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/gin-gonic/gin"
)

func backupTopicName() string {
	topicName := strings.TrimSpace(os.Getenv("LEDGER_BACKUP_TOPIC"))
	if topicName == "" {
		topicName = "ledger-backup"
	}
	return topicName
}

// PublishBackupRequested asks whichever service holds the ledger to take
// an offsite backup now.
func PublishBackupRequested(ctx context.Context, requestedBy, reason string) error {
	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topicName := backupTopicName()
	topic := client.Topic(topicName)
	if config.BoolFromEnv("LEDGER_BACKUP_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	res := topic.Publish(ctx, backupMessage(requestedBy, reason))
	_, err = res.Get(ctx)
	return err
}

func backupMessage(requestedBy, reason string) *pubsub.Message {
	data, _ := json.Marshal(BackupPubSubPayload{RequestedBy: requestedBy, Reason: reason})
	return &pubsub.Message{Data: data}
}

// BackupPushHandler runs a ledger backup when a Pub/Sub push delivery
// arrives. Always acks (204): a malformed envelope is not worth a
// redelivery loop, and a failed backup is reported to the operator rather
// than retried.
func BackupPushHandler(store Ledger, notifier Notifier, operatorNumber string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.BoolFromEnv("ENABLE_BACKUP_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(http.StatusNoContent)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusNoContent)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := DecodeBackupPayload(envelope.Message.Data); !ok {
			c.Status(http.StatusNoContent)
			return
		}

		ctx := c.Request.Context()
		if err := store.Backup(ctx); err != nil {
			notifier.Send(ctx, operatorNumber, "Erro no backup do CSV: "+err.Error())
		}
		c.Status(http.StatusNoContent)
	}
}
