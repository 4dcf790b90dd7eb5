package feature

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperFields = []string{
	"currency",
	"country",
	"ip_country",
	"transaction_type",
	"channel",
	"merchant_id",
	"device_id",
}

const titleField = "city"

// Canonicalize applies the casing conventions encoders rely on and returns a
// new Set. It is idempotent.
func Canonicalize(s Set) Set {
	out := s.Clone()
	for _, name := range upperFields {
		if v, ok := out[name]; ok && v.kind == KindCategorical && v.text != "" {
			out[name] = Text(strings.ToUpper(v.text))
		}
	}
	if v, ok := out[titleField]; ok && v.kind == KindCategorical && v.text != "" {
		out[titleField] = Text(titleCase(v.text))
	}
	return out
}

// titleCase capitalizes every word and every letter that follows an
// apostrophe ("o'neil" becomes "O'Neil"). Letters after digits stay lower
// case ("3rd"), unlike some title-casing rules.
func titleCase(s string) string {
	// Casers keep state; one per call.
	caser := cases.Title(language.Und)
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "'")
}
