package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/admissaoprv/secretaria-backend/config"
)

// ErrUnavailable marks a non-2xx answer from the classifier API, as
// opposed to a transport failure. Callers that want the lenient path test
// with errors.Is.
var ErrUnavailable = errors.New("classifier unavailable")

const systemPrompt = "Você é um assistente que verifica se uma mensagem indica que um aluno preencheu uma ficha de matrícula. " +
	`Responda com um JSON: ` + "`{ \"confirmed\": true }`" + ` se a mensagem confirmar o preenchimento, ou ` +
	"`{ \"confirmed\": false }`" + ` se não confirmar. Exemplo de mensagens confirmatórias: 'Ficha preenchida', 'Inscrição concluída', 'Já enviei a ficha'. Ignore mensagens irrelevantes.`

// Client asks the x.ai chat API whether a free-text WhatsApp message
// confirms that a student filled the enrollment form.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient() *Client {
	endpoint := strings.TrimSpace(os.Getenv("XAI_API_URL"))
	if endpoint == "" {
		endpoint = "https://api.x.ai/v1/chat/completions"
	}
	timeout := time.Duration(config.IntFromEnv("XAI_API_TIMEOUT_SECONDS", 30)) * time.Second
	return &Client{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(os.Getenv("XAI_API_KEY")),
		http:     &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type verdict struct {
	Confirmed bool `json:"confirmed"`
}

// Classify returns whether the message confirms enrollment. The caller is
// expected to have ASCII-sanitized the text already.
func (c *Client) Classify(ctx context.Context, text string) (bool, error) {
	payload, _ := json.Marshal(chatRequest{
		Model: "grok-beta",
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.2,
		MaxTokens:   50,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, err
	}
	if len(parsed.Choices) == 0 {
		return false, errors.New("classifier returned no choices")
	}

	var v verdict
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &v); err != nil {
		return false, fmt.Errorf("parse classifier verdict: %w", err)
	}
	return v.Confirmed, nil
}
