package importer

import (
	"strings"
	"unicode"
)

// processors are card processor prefixes written before the merchant,
// as in "SQ *BLUE BOTTLE".
var processors = map[string]bool{
	"SQ":     true,
	"TST":    true,
	"SP":     true,
	"PY":     true,
	"PAYPAL": true,
}

// NormalizeMerchant derives a stable merchant name from a bank description.
// Bank exports have no merchant field, and the same merchant shows up with
// varying store numbers and reference codes from month to month.
func NormalizeMerchant(desc string) string {
	s := strings.ToUpper(strings.TrimSpace(desc))
	if before, after, ok := strings.Cut(s, "*"); ok {
		if processors[strings.TrimSpace(before)] {
			s = after
		} else {
			s = before
		}
	}

	var words []string
	for _, w := range strings.Fields(s) {
		if strings.IndexFunc(w, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
			continue
		}
		if len(words) > 0 && strings.ContainsFunc(w, func(r rune) bool { return unicode.IsDigit(r) || r == '#' }) {
			break
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}
