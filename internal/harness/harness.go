package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/store"
	"github.com/roach88/redirector/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the expected outcome matched and every assertion held.
	Pass bool

	// Output is the pipeline output. On an ambiguity error it carries the
	// partial assignment; on other errors it is nil.
	Output *engine.Output

	// Err is the error the pipeline returned, if any.
	Err error

	// Errors contains assertion and expectation failures.
	Errors []string
}

func (r *Result) fail(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run executes a scenario against a fresh SQLite Magento database.
//
// The returned error reports harness failures (fixture or database setup);
// pipeline errors land in Result.Err and are judged against Expect.
func Run(t testing.TB, s *Scenario) (*Result, error) {
	t.Helper()

	dsn := testutil.NewMagentoDB(t, fixture(s))
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(ctx, store.Config{Driver: store.SQLite, DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario database: %w", err)
	}
	defer st.Close()

	result := &Result{Pass: true}

	records, err := st.Records(ctx)
	if err == nil {
		result.Output, err = engine.Run(records, engine.Config{
			Overrides:     s.Options.Languages,
			Skip:          s.Options.Skip,
			SelectorParam: s.Options.StoreParam,
			SkipAmbiguous: s.Options.SkipAmbiguous,
			Basename:      s.Options.Basename,
		}, logger)
	}
	result.Err = err

	checkExpectation(s.Expect, err, result)
	for _, msg := range EvaluateAssertions(result.Output, s.Assertions) {
		result.fail("%s", msg)
	}
	return result, nil
}

func checkExpectation(expect *ExpectClause, err error, result *Result) {
	if expect == nil {
		if err != nil {
			result.fail("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		result.fail("expected %s error, run succeeded", expect.Error)
		return
	}
	if kind := errorKind(err); kind != expect.Error {
		result.fail("expected %s error, got %s: %v", expect.Error, kind, err)
	}
}

func errorKind(err error) string {
	var missing *store.ConfigMissingError
	switch {
	case assign.IsAmbiguous(err):
		return ErrorAmbiguous
	case assign.IsInvalidOverride(err):
		return ErrorInvalidOverride
	case errors.As(err, &missing):
		return ErrorConfigMissing
	}
	return "other"
}

// fixture turns the scenario stores into database rows. Store ids follow
// list order starting at 1; every website gets one group.
func fixture(s *Scenario) testutil.MagentoFixture {
	var f testutil.MagentoFixture
	groups := make(map[int64]int)

	for i, st := range s.Stores {
		id := int64(i + 1)
		website := st.website()

		gi, ok := groups[website]
		if !ok {
			gi = len(f.Groups)
			groups[website] = gi
			f.Groups = append(f.Groups, testutil.Group{ID: website, WebsiteID: website})
		}
		if st.Default {
			f.Groups[gi].DefaultStoreID = id
		}

		f.Stores = append(f.Stores, testutil.Store{
			ID:        id,
			Code:      st.Code,
			WebsiteID: website,
			GroupID:   website,
			Active:    !st.Inactive,
		})
		if st.Locale != "" {
			f.Configs = append(f.Configs, testutil.ConfigRow{
				Scope: "stores", ScopeID: id, Path: store.PathLocale, Value: testutil.Value(st.Locale),
			})
		}
		if st.BaseURL != "" {
			f.Configs = append(f.Configs, testutil.ConfigRow{
				Scope: "stores", ScopeID: id, Path: store.PathUnsecureURL, Value: testutil.Value(st.BaseURL),
			})
		}
	}
	return f
}
