package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/storefront"
)

func runEngine(t *testing.T, overrides map[string]string, records ...storefront.StoreRecord) *engine.Output {
	t.Helper()
	out, _ := engine.Run(records, engine.Config{Overrides: overrides}, nil)
	require.NotNil(t, out)
	return out
}

func rec(code, loc, url string) storefront.StoreRecord {
	return storefront.StoreRecord{Code: code, Locale: loc, BaseURL: url, IsActive: true, IsDefault: true}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	out := runEngine(t, nil, rec("us", "en_US", "http://us/"), rec("fr", "fr_FR", "http://fr/"))

	failures := EvaluateAssertions(out, []Assertion{
		{Type: AssertMapping, Language: "en", Code: "us", URL: "http://us/"},
		{Type: AssertRuleOrder, Languages: []string{"fr", "en"}},
		{Type: AssertFileRules, File: "us.conf", Languages: []string{"fr"}},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	out := runEngine(t, nil, rec("us", "en_US", "http://us/"), rec("fr", "fr_FR", "http://fr/"))

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"wrong winner", Assertion{Type: AssertMapping, Language: "en", Code: "fr"}, "en -> us"},
		{"unmapped", Assertion{Type: AssertMapping, Language: "de", Code: "de"}, "de not mapped"},
		{"order", Assertion{Type: AssertRuleOrder, Languages: []string{"en", "fr"}}, "[fr en]"},
		{"missing file", Assertion{Type: AssertFileRules, File: "de.conf", Languages: []string{}}, "files [us.conf fr.conf]"},
		{"file rules", Assertion{Type: AssertFileRules, File: "fr.conf", Languages: []string{}}, "fr.conf rules [en]"},
		{"no conflict", Assertion{Type: AssertConflict, Language: "en", Codes: []string{"us", "uk"}}, "conflicts []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(out, []Assertion{tt.assertion})
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "Assertion failed: "+tt.assertion.Type)
			assert.Contains(t, failures[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_Conflict(t *testing.T) {
	out := runEngine(t, nil, rec("us", "en_US", "http://us/"), rec("uk", "en_GB", "http://uk/"))

	assert.Empty(t, EvaluateAssertions(out, []Assertion{
		{Type: AssertConflict, Language: "en", Codes: []string{"us", "uk"}},
	}))

	failures := EvaluateAssertions(out, []Assertion{
		{Type: AssertConflict, Language: "en", Codes: []string{"uk", "us"}},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "en claimed by [us uk]")
}

func TestEvaluateAssertions_NoOutput(t *testing.T) {
	failures := EvaluateAssertions(nil, []Assertion{{Type: AssertRuleOrder, Languages: []string{}}})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "run failed before assigning")
}

func TestAssertionError_ListsRuleChain(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRuleOrder,
		Expected: "[a]",
		Actual:   "[b]",
		Rules:    []storefront.Entry{{Language: "b", URL: "http://b/", Code: "bs"}},
	}
	assert.Contains(t, err.Error(), "[1] b -> http://b/ (bs)")
}
