// Package assign turns Magento store records into the canonical
// language → store mapping.
//
// Assign runs in three passes over the records, all in input order:
//
//  1. Group by base URL and append the store-selector parameter to every
//     member of a shared URL except its owner.
//  2. Derive one entry per language key (full "en-us", short "en").
//  3. Fold the entries into a Mapping, arbitrating repeated keys through the
//     operator overrides and collecting conflicts where none applies.
//
// No pass depends on map iteration order; conflict reports are therefore
// byte-identical across runs with the same input.
package assign

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/redirector/internal/locale"
	"github.com/roach88/redirector/internal/storefront"
)

// DefaultSelectorParam is the query parameter naming the store on shared URLs.
const DefaultSelectorParam = "store"

// Options controls a single Assign run.
type Options struct {
	// Overrides maps a language key to the store code that wins it.
	Overrides map[string]string

	// Skip lists store codes removed before any other processing.
	Skip []string

	// SelectorParam names the store-selector query parameter.
	// Defaults to DefaultSelectorParam.
	SelectorParam string

	// SkipAmbiguous drops contested languages from the mapping instead of
	// failing the run.
	SkipAmbiguous bool

	// Logger receives debug and warning output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Site is one distinct base URL and the store that owns it.
type Site struct {
	BaseURL string
	Owner   storefront.Entry // the owner's full-key entry
	Members []string         // every store code on this URL, input order
}

// Conflict is a language key claimed by more than one store.
type Conflict struct {
	Language string   `json:"language"`
	Codes    []string `json:"codes"`
}

// Result is the output of Assign.
type Result struct {
	// Entries holds every derived entry in input order, before arbitration.
	Entries []storefront.Entry

	// Mapping is the canonical, conflict-free table.
	Mapping *Mapping

	// Sites lists distinct base URLs in first-appearance order.
	Sites []Site

	// Conflicts lists contested keys in detection order.
	Conflicts []Conflict
}

// Assign resolves records into the canonical mapping.
//
// When a language key is contested and no override names a winner, Assign
// returns the partial Result together with an *AmbiguousLanguageError for the
// first conflict; Result.Conflicts carries all of them. With
// Options.SkipAmbiguous the contested keys are dropped and no error is
// returned.
func Assign(records []storefront.StoreRecord, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	param := opts.SelectorParam
	if param == "" {
		param = DefaultSelectorParam
	}

	kept, err := filterRecords(records, opts.Skip, logger)
	if err != nil {
		return nil, err
	}

	urls, sites := rewriteURLs(kept, param)

	entries := make([]storefront.Entry, 0, len(kept)*2)
	for i, rec := range kept {
		keys, err := locale.Derive(rec.Locale)
		if err != nil {
			return nil, fmt.Errorf("store %q: %w", rec.Code, err)
		}
		if !locale.Recognized(keys.Full) {
			logger.Warn("unrecognized locale", "store", rec.Code, "locale", rec.Locale)
		}
		for _, key := range keys.All() {
			entries = append(entries, storefront.Entry{
				Language:  key,
				URL:       urls[i],
				Code:      rec.Code,
				IsDefault: rec.IsDefault,
			})
		}
	}

	for i := range sites {
		for _, e := range entries {
			if e.Code == sites[i].Owner.Code {
				sites[i].Owner = e
				break
			}
		}
	}

	overrides := normalizeOverrides(opts.Overrides)
	if err := validateOverrides(entries, overrides); err != nil {
		return nil, err
	}

	mapping, conflicts := fold(entries, overrides, logger)
	res := &Result{
		Entries:   entries,
		Mapping:   mapping,
		Sites:     sites,
		Conflicts: conflicts,
	}

	if len(conflicts) == 0 {
		return res, nil
	}
	if opts.SkipAmbiguous {
		for _, c := range conflicts {
			logger.Warn("skipping ambiguous language", "language", c.Language, "stores", strings.Join(c.Codes, ","))
			mapping.remove(c.Language)
		}
		return res, nil
	}
	first := conflicts[0]
	return res, &AmbiguousLanguageError{Language: first.Language, Codes: first.Codes}
}

// filterRecords drops skipped and inactive stores and checks code uniqueness.
func filterRecords(records []storefront.StoreRecord, skip []string, logger *slog.Logger) ([]storefront.StoreRecord, error) {
	seen := make(map[string]bool, len(records))
	kept := make([]storefront.StoreRecord, 0, len(records))
	for _, rec := range records {
		if seen[rec.Code] {
			return nil, &DuplicateCodeError{Code: rec.Code}
		}
		seen[rec.Code] = true

		if slices.Contains(skip, rec.Code) {
			logger.Debug("skipping store", "store", rec.Code)
			continue
		}
		if !rec.IsActive {
			logger.Debug("ignoring inactive store", "store", rec.Code)
			continue
		}
		if strings.TrimSpace(rec.BaseURL) == "" {
			return nil, fmt.Errorf("store %q: empty base url", rec.Code)
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

// rewriteURLs returns the target URL for each record and the site list.
//
// The owner of a shared URL is its first default store, or its first member
// when none is default. Default stores always keep the bare URL; every other
// non-owner gets the selector parameter.
func rewriteURLs(records []storefront.StoreRecord, param string) ([]string, []Site) {
	var sites []Site
	index := make(map[string]int)
	owner := make(map[string]string)

	for _, rec := range records {
		i, ok := index[rec.BaseURL]
		if !ok {
			i = len(sites)
			index[rec.BaseURL] = i
			sites = append(sites, Site{BaseURL: rec.BaseURL})
		}
		sites[i].Members = append(sites[i].Members, rec.Code)
		if _, has := owner[rec.BaseURL]; !has && rec.IsDefault {
			owner[rec.BaseURL] = rec.Code
		}
	}
	for i := range sites {
		code, ok := owner[sites[i].BaseURL]
		if !ok {
			code = sites[i].Members[0]
			owner[sites[i].BaseURL] = code
		}
		sites[i].Owner = storefront.Entry{Code: code, URL: sites[i].BaseURL}
	}

	urls := make([]string, len(records))
	for i, rec := range records {
		shared := len(sites[index[rec.BaseURL]].Members) > 1
		if shared && !rec.IsDefault && owner[rec.BaseURL] != rec.Code {
			urls[i] = storefront.WithSelector(rec.BaseURL, param, rec.Code)
			continue
		}
		urls[i] = rec.BaseURL
	}
	return urls, sites
}

func normalizeOverrides(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for lang, code := range in {
		out[locale.Normalize(lang)] = strings.TrimSpace(code)
	}
	return out
}

// validateOverrides rejects overrides that cannot take effect: the language
// must be derived by some store and the code must be one of those stores.
func validateOverrides(entries []storefront.Entry, overrides map[string]string) error {
	langs := make([]string, 0, len(overrides))
	for lang := range overrides {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	for _, lang := range langs {
		code := overrides[lang]
		served, byCode := false, false
		for _, e := range entries {
			if e.Language != lang {
				continue
			}
			served = true
			if e.Code == code {
				byCode = true
			}
		}
		if !served {
			return &InvalidOverrideError{Language: lang, Code: code, Reason: "no store derives this language"}
		}
		if !byCode {
			return &InvalidOverrideError{Language: lang, Code: code, Reason: "store does not serve this language"}
		}
	}
	return nil
}

// fold accumulates entries into the mapping in input order.
func fold(entries []storefront.Entry, overrides map[string]string, logger *slog.Logger) (*Mapping, []Conflict) {
	m := newMapping()
	var conflicts []Conflict
	reported := make(map[string]bool)

	for _, e := range entries {
		if winner, ok := overrides[e.Language]; ok {
			if e.Code == winner {
				m.insert(e)
			} else {
				logger.Debug("override drops entry", "language", e.Language, "store", e.Code, "winner", winner)
			}
			continue
		}

		if _, exists := m.Get(e.Language); !exists {
			m.insert(e)
			continue
		}
		if reported[e.Language] {
			continue
		}
		reported[e.Language] = true
		conflicts = append(conflicts, Conflict{
			Language: e.Language,
			Codes:    claimants(entries, e.Language),
		})
	}
	return m, conflicts
}

// claimants lists codes whose entries equal or refine lang, in input order.
func claimants(entries []storefront.Entry, lang string) []string {
	var codes []string
	for _, e := range entries {
		if !locale.IsPrefixOf(lang, e.Language) {
			continue
		}
		if !slices.Contains(codes, e.Code) {
			codes = append(codes, e.Code)
		}
	}
	return codes
}
