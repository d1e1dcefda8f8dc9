// Package optimize orders canonical entries into a first-match-wins rule
// chain.
//
// nginx evaluates the generated `if` blocks top to bottom, so a regional
// rule ("en-us") has to come before the generic rule of its language ("en").
// Optimize guarantees that by sorting language keys in descending byte
// order, after dropping regional rules that add nothing because the generic
// rule already sends visitors to the same URL.
package optimize

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/redirector/internal/locale"
	"github.com/roach88/redirector/internal/storefront"
)

// ErrEmptyLanguage is returned for an entry with a blank language key.
var ErrEmptyLanguage = errors.New("entry with empty language key")

// DuplicateLanguageError reports two entries with the same language key.
// Assign never produces this; seeing it means the canonical mapping was
// bypassed or corrupted.
type DuplicateLanguageError struct {
	Language string
	Codes    []string
}

// Error implements the error interface.
func (e *DuplicateLanguageError) Error() string {
	return fmt.Sprintf("language %q appears more than once (stores %s)", e.Language, strings.Join(e.Codes, ", "))
}

// Optimize removes redundant variants and returns the remaining entries in
// rule order. The input slice is not modified.
//
// An entry is redundant when another entry with the same URL has a language
// key that prefixes it on a sub-tag boundary.
func Optimize(entries []storefront.Entry) ([]storefront.Entry, error) {
	if err := check(entries); err != nil {
		return nil, err
	}

	out := make([]storefront.Entry, 0, len(entries))
	for i, e := range entries {
		if redundant(entries, i) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b storefront.Entry) int {
		return strings.Compare(b.Language, a.Language)
	})
	return out, nil
}

func check(entries []storefront.Entry) error {
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Language == "" {
			return fmt.Errorf("store %q: %w", e.Code, ErrEmptyLanguage)
		}
		if j, dup := seen[e.Language]; dup {
			return &DuplicateLanguageError{Language: e.Language, Codes: []string{entries[j].Code, e.Code}}
		}
		seen[e.Language] = i
	}
	return nil
}

// redundant reports whether entries[i] is covered by a more general entry
// pointing at the same URL.
func redundant(entries []storefront.Entry, i int) bool {
	e := entries[i]
	for j, o := range entries {
		if j == i || o.URL != e.URL {
			continue
		}
		if locale.IsPrefixOf(o.Language, e.Language) {
			return true
		}
	}
	return false
}
