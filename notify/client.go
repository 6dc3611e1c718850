package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/admissaoprv/secretaria-backend/config"
	"github.com/admissaoprv/secretaria-backend/models"
	"github.com/admissaoprv/secretaria-backend/utils"
	"github.com/sirupsen/logrus"
)

// FailureRecorder receives a diagnostic record when a send fails at the
// transport level. Wired to the audit log in main; nil is tolerated so the
// client stays usable before full wiring.
type FailureRecorder func(ctx context.Context, action, detail string)

// Client sends WhatsApp messages through the Evolution API. Delivery is
// best-effort: callers get a bool, never an error.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	logg      *logrus.Logger
	onFailure FailureRecorder
}

func NewClient(logger *logrus.Logger) *Client {
	baseURL := strings.TrimSpace(os.Getenv("EVOLUTION_API_URL"))
	if baseURL == "" {
		baseURL = "http://evolution-api-url:8080"
	}
	timeout := time.Duration(config.IntFromEnv("EVOLUTION_API_TIMEOUT_SECONDS", 30)) * time.Second
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(os.Getenv("EVOLUTION_API_KEY")),
		http:    &http.Client{Timeout: timeout},
		logg:    logger,
	}
}

// SetFailureRecorder installs the audit hook. Set after the audit log is
// constructed; the two collaborators reference each other.
func (c *Client) SetFailureRecorder(fn FailureRecorder) {
	c.onFailure = fn
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Send posts one text message. Returns true only when the transport
// accepted the message. Transport failures are recorded and swallowed.
func (c *Client) Send(ctx context.Context, number, text string) bool {
	recipient := utils.NormalizePhoneNumber(number)
	payload, _ := json.Marshal(sendTextRequest{Number: recipient, Text: text})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message/sendText", bytes.NewReader(payload))
	if err != nil {
		c.recordFailure(ctx, recipient, err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx, recipient, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) recordFailure(ctx context.Context, number string, err error) {
	config.LogError(c.logg, "notify", "Send", "evolution sendText", number, err)
	if c.onFailure != nil {
		c.onFailure(ctx, models.AuditMessageSendFailed, number+": "+err.Error())
	}
}
