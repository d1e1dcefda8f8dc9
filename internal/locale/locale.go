// Package locale derives redirect language keys from Magento locale codes.
//
// Only the primary sub-tag is interpreted. "en_US" yields the full key
// "en-us" and the short key "en"; "en" yields "en" alone. No quality values,
// scripts, or region fallback are considered.
package locale

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Separator joins sub-tags in normalized keys.
const Separator = "-"

// ErrEmptyLocale is returned for a blank locale code.
var ErrEmptyLocale = errors.New("empty locale")

// Keys is the pair of language keys a locale contributes.
type Keys struct {
	Full  string // whole locale, dash-lowercase
	Short string // primary sub-tag; empty when the locale has no separator
}

// All returns the full key followed by the short key, if any.
func (k Keys) All() []string {
	if k.Short == "" {
		return []string{k.Full}
	}
	return []string{k.Full, k.Short}
}

// Derive splits a raw locale code into its language keys.
// The short key is the text preceding the first non-alphabetic rune.
func Derive(raw string) (Keys, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Keys{}, ErrEmptyLocale
	}

	idx := strings.IndexFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) })
	if idx < 0 {
		return Keys{Full: Normalize(raw)}, nil
	}
	if idx == 0 {
		return Keys{}, fmt.Errorf("locale %q: no primary language before separator", raw)
	}

	keys := Keys{
		Full:  Normalize(raw),
		Short: strings.ToLower(raw[:idx]),
	}
	// "en_" has nothing after the separator: one key, not two.
	if keys.Short == keys.Full {
		keys.Short = ""
	}
	return keys, nil
}

// Normalize lower-cases a locale and replaces every run of non-alphanumeric
// runes with a single dash. "en_US" and "EN-us" both become "en-us".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSep := false
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteString(Separator)
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// IsPrefixOf reports whether general matches the start of specific on a
// sub-tag boundary, ignoring case: "en" matches "en" and "en-us", not "eng".
func IsPrefixOf(general, specific string) bool {
	general = strings.ToLower(general)
	specific = strings.ToLower(specific)
	if general == "" {
		return false
	}
	return specific == general || strings.HasPrefix(specific, general+Separator)
}

// Recognized reports whether key parses as a BCP 47 tag with a known base
// language. Unrecognized keys still produce rules; callers only warn.
func Recognized(key string) bool {
	tag, err := language.Parse(key)
	if err != nil {
		return false
	}
	_, conf := tag.Base()
	return conf != language.No
}
