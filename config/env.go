package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults shared by the webhook and backup services. Every one of them
// can be overridden through the environment.
const (
	DefaultLedgerFile     = "pagamentos.csv"
	DefaultOperatorNumber = "+556392261578"
	DefaultFormURL        = "https://admissaoprv.com.br/ensino/"
)

func init() {
	// Load env from .env
	godotenv.Load()
}

func GetLedgerFile() string {
	if v := strings.TrimSpace(os.Getenv("LEDGER_CSV_FILE")); v != "" {
		return v
	}
	return DefaultLedgerFile
}

// GetOperatorNumber returns the secretaria WhatsApp number that receives
// operational alerts and payment summaries.
func GetOperatorNumber() string {
	if v := strings.TrimSpace(os.Getenv("OPERATOR_WHATSAPP_NUMBER")); v != "" {
		return v
	}
	return DefaultOperatorNumber
}

func GetFormURL() string {
	if v := strings.TrimSpace(os.Getenv("ENROLLMENT_FORM_URL")); v != "" {
		return v
	}
	return DefaultFormURL
}

func IntFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func BoolFromEnv(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}

func StringFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
