package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Stores lists the active store views in store_id order.
	Stores []ScenarioStore `yaml:"stores"`

	// Options are the operator inputs of the run.
	Options Options `yaml:"options,omitempty"`

	// Expect names the error the run must fail with. Nil means success.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the mapping, rule chain and files.
	Assertions []Assertion `yaml:"assertions"`
}

// ScenarioStore is one store view of the scenario shop.
type ScenarioStore struct {
	Code    string `yaml:"code"`
	Locale  string `yaml:"locale"`
	BaseURL string `yaml:"base_url"`

	// Website defaults to 1. Each website has one store group.
	Website int64 `yaml:"website,omitempty"`

	// Default marks the default store of its website's group.
	Default bool `yaml:"default,omitempty"`

	// Inactive stores are stored but never read back.
	Inactive bool `yaml:"inactive,omitempty"`
}

// Options mirrors the operator flags of the generate command.
type Options struct {
	Languages     map[string]string `yaml:"languages,omitempty"`
	Skip          []string          `yaml:"skip,omitempty"`
	StoreParam    string            `yaml:"store_param,omitempty"`
	SkipAmbiguous bool              `yaml:"skip_ambiguous,omitempty"`
	Basename      string            `yaml:"basename,omitempty"`
}

// ExpectClause specifies the expected failure.
type ExpectClause struct {
	Error string `yaml:"error"`
}

// Expected error kinds.
const (
	ErrorAmbiguous       = "ambiguous"
	ErrorInvalidOverride = "invalid_override"
	ErrorConfigMissing   = "config_missing"
)

// Assertion validates part of the run output.
type Assertion struct {
	// Type is one of mapping, rule_order, file_rules, conflict.
	Type string `yaml:"type"`

	// Language is the key checked by mapping and conflict.
	Language string `yaml:"language,omitempty"`

	// Code is the winning store (mapping).
	Code string `yaml:"code,omitempty"`

	// URL optionally pins the redirect target (mapping).
	URL string `yaml:"url,omitempty"`

	// File names the snippet checked by file_rules.
	File string `yaml:"file,omitempty"`

	// Languages is the exact rule order (rule_order, file_rules).
	Languages []string `yaml:"languages,omitempty"`

	// Codes lists the claimants in input order (conflict).
	Codes []string `yaml:"codes,omitempty"`
}

// Assertion type constants.
const (
	AssertMapping   = "mapping"
	AssertRuleOrder = "rule_order"
	AssertFileRules = "file_rules"
	AssertConflict  = "conflict"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("scenario name %q used by %s and %s", s.Name, prev, filepath.Base(path))
		}
		names[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Stores) == 0 {
		return fmt.Errorf("stores list is required and must be non-empty")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required when no error is expected")
	}

	codes := make(map[string]bool, len(s.Stores))
	defaults := make(map[int64]string)
	for i, st := range s.Stores {
		if st.Code == "" {
			return fmt.Errorf("stores[%d]: code is required", i)
		}
		if codes[st.Code] {
			return fmt.Errorf("stores[%d]: duplicate code %q", i, st.Code)
		}
		codes[st.Code] = true
		if st.Default {
			if prev, ok := defaults[st.website()]; ok {
				return fmt.Errorf("stores[%d]: website %d already has default store %q", i, st.website(), prev)
			}
			defaults[st.website()] = st.Code
		}
	}

	if s.Expect != nil {
		switch s.Expect.Error {
		case ErrorAmbiguous, ErrorInvalidOverride, ErrorConfigMissing:
		default:
			return fmt.Errorf("expect: unknown error %q", s.Expect.Error)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMapping:
		if a.Language == "" || a.Code == "" {
			return fmt.Errorf("assertions[%d]: language and code are required for mapping", index)
		}
	case AssertRuleOrder:
		if a.Languages == nil {
			return fmt.Errorf("assertions[%d]: languages list is required for rule_order", index)
		}
	case AssertFileRules:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for file_rules", index)
		}
		if a.Languages == nil {
			return fmt.Errorf("assertions[%d]: languages list is required for file_rules", index)
		}
	case AssertConflict:
		if a.Language == "" || len(a.Codes) < 2 {
			return fmt.Errorf("assertions[%d]: language and at least two codes are required for conflict", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func (s ScenarioStore) website() int64 {
	if s.Website == 0 {
		return 1
	}
	return s.Website
}
