package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// fold lowercases s and strips diacritics so "Ceará" matches "ceara".
// Transformers keep state, so a chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Search keeps the collectibles whose name or group name contains query,
// ignoring case and accents. An empty query keeps everything.
func Search(list []domain.Collectible, query string) []domain.Collectible {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]domain.Collectible, 0)
	for _, c := range list {
		if strings.Contains(fold(c.Name), q) || strings.Contains(fold(c.GroupName), q) {
			out = append(out, c)
		}
	}
	return out
}
