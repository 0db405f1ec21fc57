// Package names canonicalizes raw person names into comparable keys.
//
// Normalization upper-cases the input and turns every character that is not
// an uppercase Latin letter A-Z or a space into a space, then collapses runs
// of whitespace. Punctuation, digits and diacritics therefore split tokens
// rather than merging them: "O'NEIL" becomes "O NEIL" and "JOSÉ" becomes "JOS".
package names

import "strings"

// Normalize returns the canonical exact-match key for a raw name.
// The result contains only A-Z separated by single spaces, with no leading or
// trailing space. Normalize is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	upper := strings.ToUpper(raw)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// FirstTwoTokens returns the fallback key: the first two tokens of the
// normalized name. Names with fewer tokens yield all of them; an empty name
// yields the empty string.
func FirstTwoTokens(raw string) string {
	tokens := strings.Fields(Normalize(raw))
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}
