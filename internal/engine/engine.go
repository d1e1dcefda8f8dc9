package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/optimize"
	"github.com/roach88/redirector/internal/render"
	"github.com/roach88/redirector/internal/storefront"
)

// Config is the operator input of a run.
type Config struct {
	Overrides     map[string]string
	Skip          []string
	SelectorParam string
	SkipAmbiguous bool
	Basename      string
}

// Output is everything a run computes.
type Output struct {
	Assignment *assign.Result
	Rules      []storefront.Entry
	Files      []render.File
}

// Run resolves records and renders one snippet per base URL.
//
// On an ambiguity error the partial Output is returned alongside the error
// so callers can report every conflict; Rules and Files are empty then.
func Run(records []storefront.StoreRecord, cfg Config, logger *slog.Logger) (*Output, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := assign.Assign(records, assign.Options{
		Overrides:     cfg.Overrides,
		Skip:          cfg.Skip,
		SelectorParam: cfg.SelectorParam,
		SkipAmbiguous: cfg.SkipAmbiguous,
		Logger:        logger,
	})
	if err != nil {
		if res != nil {
			return &Output{Assignment: res}, err
		}
		return nil, err
	}
	logger.Debug("stores assigned", "entries", len(res.Entries), "languages", res.Mapping.Len(), "sites", len(res.Sites))

	rules, err := optimize.Optimize(res.Mapping.Entries())
	if err != nil {
		return nil, fmt.Errorf("optimize rules: %w", err)
	}
	logger.Debug("rules optimized", "rules", len(rules))

	files, err := render.Plan(res.Sites, rules, render.Options{Basename: cfg.Basename})
	if err != nil {
		return nil, err
	}

	return &Output{Assignment: res, Rules: rules, Files: files}, nil
}
