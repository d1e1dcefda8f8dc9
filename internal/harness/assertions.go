package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/render"
	"github.com/roach88/redirector/internal/storefront"
)

// AssertionError is returned when an assertion fails.
// It includes the rule chain to help debug the failure.
type AssertionError struct {
	Type     string             // Assertion type for categorization
	Expected string             // Human-readable expected outcome
	Actual   string             // Human-readable actual outcome
	Rules    []storefront.Entry // Full rule chain for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rules) > 0 {
		fmt.Fprintf(&buf, "\nRule chain:\n")
		for i, r := range e.Rules {
			fmt.Fprintf(&buf, "  [%d] %s -> %s (%s)\n", i+1, r.Language, r.URL, r.Code)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against out and returns the
// failure messages. out may be nil when the run failed before assigning.
func EvaluateAssertions(out *engine.Output, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(out, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(out *engine.Output, a Assertion) error {
	if out == nil || out.Assignment == nil {
		return &AssertionError{Type: a.Type, Expected: "a completed assignment", Actual: "run failed before assigning"}
	}
	switch a.Type {
	case AssertMapping:
		return assertMapping(out, a)
	case AssertRuleOrder:
		return assertRuleOrder(out, a)
	case AssertFileRules:
		return assertFileRules(out, a)
	case AssertConflict:
		return assertConflict(out, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

// assertMapping checks the winner of one language key.
func assertMapping(out *engine.Output, a Assertion) error {
	e, ok := out.Assignment.Mapping.Get(a.Language)
	if !ok {
		return &AssertionError{
			Type:     AssertMapping,
			Expected: fmt.Sprintf("%s -> %s", a.Language, a.Code),
			Actual:   fmt.Sprintf("%s not mapped (keys %v)", a.Language, out.Assignment.Mapping.Keys()),
			Rules:    out.Rules,
		}
	}
	if e.Code != a.Code || (a.URL != "" && e.URL != a.URL) {
		return &AssertionError{
			Type:     AssertMapping,
			Expected: fmt.Sprintf("%s -> %s %s", a.Language, a.Code, a.URL),
			Actual:   fmt.Sprintf("%s -> %s %s", e.Language, e.Code, e.URL),
			Rules:    out.Rules,
		}
	}
	return nil
}

// assertRuleOrder checks the exact language order of the rule chain.
func assertRuleOrder(out *engine.Output, a Assertion) error {
	got := languages(out.Rules)
	if slices.Equal(got, a.Languages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRuleOrder,
		Expected: fmt.Sprintf("%v", a.Languages),
		Actual:   fmt.Sprintf("%v", got),
		Rules:    out.Rules,
	}
}

// assertFileRules checks the exact rule order inside one snippet.
func assertFileRules(out *engine.Output, a Assertion) error {
	var file *render.File
	for i := range out.Files {
		if out.Files[i].Name == a.File {
			file = &out.Files[i]
			break
		}
	}
	if file == nil {
		names := make([]string, 0, len(out.Files))
		for _, f := range out.Files {
			names = append(names, f.Name)
		}
		return &AssertionError{
			Type:     AssertFileRules,
			Expected: fmt.Sprintf("file %s", a.File),
			Actual:   fmt.Sprintf("files %v", names),
		}
	}

	got := languages(file.Rules)
	if slices.Equal(got, a.Languages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFileRules,
		Expected: fmt.Sprintf("%s rules %v", a.File, a.Languages),
		Actual:   fmt.Sprintf("%s rules %v", a.File, got),
		Rules:    out.Rules,
	}
}

// assertConflict checks that a key was reported with the given claimants.
func assertConflict(out *engine.Output, a Assertion) error {
	for _, c := range out.Assignment.Conflicts {
		if c.Language != a.Language {
			continue
		}
		if slices.Equal(c.Codes, a.Codes) {
			return nil
		}
		return &AssertionError{
			Type:     AssertConflict,
			Expected: fmt.Sprintf("%s claimed by %v", a.Language, a.Codes),
			Actual:   fmt.Sprintf("%s claimed by %v", c.Language, c.Codes),
		}
	}
	return &AssertionError{
		Type:     AssertConflict,
		Expected: fmt.Sprintf("%s claimed by %v", a.Language, a.Codes),
		Actual:   fmt.Sprintf("conflicts %v", out.Assignment.Conflicts),
	}
}

func languages(entries []storefront.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Language)
	}
	return out
}
