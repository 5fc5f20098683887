package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSKU lleva el SKU a su forma canónica: mayúsculas, sin espacios en
// los extremos y sin diacríticos (Ñ se conserva igual que cualquier letra base
// tras quitar las marcas combinantes; "café-01" → "CAFE-01").
// La unicidad del SKU se aplica sobre esta forma.
func NormalizeSKU(sku string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, sku)
	if err != nil {
		folded = sku
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}
