package recon

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func pushEnvelope(t *testing.T, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	env := PubSubPushEnvelope{}
	env.Message.Data = data
	env.Message.ID = "m1"
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func postPush(t *testing.T, handler gin.HandlerFunc, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/pubsub/ledger-backup", handler)
	req := httptest.NewRequest(http.MethodPost, "/pubsub/ledger-backup", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBackupMessageRoundTrip(t *testing.T) {
	msg := backupMessage("ops", "monthly close")

	payload, ok := DecodeBackupPayload(msg.Data)
	if !ok {
		t.Fatal("published message must decode on the worker side")
	}
	if payload.RequestedBy != "ops" || payload.Reason != "monthly close" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestBackupPushRunsBackup(t *testing.T) {
	store := newFakeLedger()
	notifier := &fakeNotifier{}
	h := BackupPushHandler(store, notifier, testOperator)

	body := pushEnvelope(t, BackupPubSubPayload{RequestedBy: "ops", Reason: "monthly close"})
	w := postPush(t, h, body)

	if w.Code != http.StatusNoContent {
		t.Fatalf("code = %d, want 204", w.Code)
	}
	if store.backups != 1 {
		t.Errorf("backups = %d, want 1", store.backups)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no operator message expected, got %+v", notifier.sent)
	}
}

func TestBackupPushMalformedEnvelopeAcks(t *testing.T) {
	store := newFakeLedger()
	h := BackupPushHandler(store, &fakeNotifier{}, testOperator)

	w := postPush(t, h, []byte("not json"))

	if w.Code != http.StatusNoContent {
		t.Fatalf("code = %d, want 204 (always ack)", w.Code)
	}
	if store.backups != 0 {
		t.Error("malformed envelope must not trigger a backup")
	}
}

func TestBackupPushFailureNotifiesOperator(t *testing.T) {
	store := newFakeLedger()
	store.backupErr = errors.New("upload refused")
	notifier := &fakeNotifier{}
	h := BackupPushHandler(store, notifier, testOperator)

	body := pushEnvelope(t, BackupPubSubPayload{RequestedBy: "ops"})
	w := postPush(t, h, body)

	if w.Code != http.StatusNoContent {
		t.Fatalf("code = %d, want 204", w.Code)
	}
	ops := notifier.operatorMessages()
	if len(ops) != 1 || !strings.Contains(ops[0].text, "Erro no backup do CSV") {
		t.Errorf("unexpected operator messages: %+v", notifier.sent)
	}
}
