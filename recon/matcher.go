package recon

import (
	"strings"
	"unicode"

	"github.com/admissaoprv/secretaria-backend/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName produces the canonical comparison key for fuzzy name
// matching: lowercase, diacritics stripped, all whitespace removed.
// Normalization is idempotent.
func NormalizeName(name string) string {
	lowered := strings.ToLower(name)
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.Join(strings.Fields(stripped), "")
}

// ResolveStudent matches a payer's free-text name against the roster by
// bidirectional containment of normalized keys. The first roster entry
// that matches wins; when several entries are plausible there is no
// tie-break beyond roster order, which the secretaria accepts for now.
// Returns nil when nothing matches.
func ResolveStudent(payerName string, roster []models.Student) *models.Student {
	payerKey := NormalizeName(payerName)
	for i := range roster {
		rosterKey := NormalizeName(roster[i].Nome)
		if strings.Contains(rosterKey, payerKey) || strings.Contains(payerKey, rosterKey) {
			return &roster[i]
		}
	}
	return nil
}
