package recon

import "encoding/json"

// WebhookMessage is the Evolution webhook envelope shared by the receipt
// and registration-confirmation routes.
type WebhookMessage struct {
	Body struct {
		Message struct {
			Text     string `json:"text"`
			From     string `json:"from"`
			HasMedia bool   `json:"hasMedia"`
			MediaUrl string `json:"mediaUrl"`
			Mimetype string `json:"mimetype"`
		} `json:"message"`
	} `json:"body"`
}

// PubSubPushEnvelope is the wrapper Google Pub/Sub wraps around pushed
// messages.
type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// BackupPubSubPayload asks for an on-demand ledger backup.
type BackupPubSubPayload struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
}

func DecodeBackupPayload(raw []byte) (BackupPubSubPayload, bool) {
	var payload BackupPubSubPayload
	if len(raw) == 0 {
		return payload, false
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, false
	}
	return payload, true
}
