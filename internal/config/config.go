// Package config loads the operator options file.
//
// The file is YAML. Before it is decoded into Options the document is
// checked against an embedded CUE schema, so a misspelled key or a malformed
// language override fails the run instead of being silently ignored.
//
// Example:
//
//	directory: /etc/nginx/redirector
//	basename: lang-
//	store_param: ___store
//	languages:
//	  en: us
//	  de: de
//	skip: [staging]
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Database overrides the connection read from local.xml.
type Database struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`
}

// Options is the decoded options file. Zero values mean "not set".
type Options struct {
	Directory     string            `yaml:"directory"`
	Basename      string            `yaml:"basename"`
	StoreParam    string            `yaml:"store_param"`
	Languages     map[string]string `yaml:"languages"`
	Skip          []string          `yaml:"skip"`
	SkipAmbiguous bool              `yaml:"skip_ambiguous"`
	Secure        bool              `yaml:"secure"`
	Database      Database          `yaml:"database"`
}

// ValidationError reports an options document rejected by the schema.
type ValidationError struct {
	Path    string
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid options: %s", e.Details)
	}
	return fmt.Sprintf("invalid options %s: %s", e.Path, e.Details)
}

// Load reads and validates the options file at path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file %s: %w", path, err)
	}
	opts, err := Parse(data)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	return opts, nil
}

// Parse validates and decodes an options document.
func Parse(data []byte) (*Options, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}

	opts := &Options{}
	if len(raw) == 0 {
		return opts, nil
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Options"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile options schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Details: strings.TrimSpace(cueerrors.Details(err, nil))}
	}
	return nil
}

// storeParamPattern matches store_param in schema.cue.
var storeParamPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckStoreParam applies the options-file rule for store_param to a value
// from any source, so flags cannot put a malformed parameter into URLs.
func CheckStoreParam(param string) error {
	if !storeParamPattern.MatchString(param) {
		return &ValidationError{Details: fmt.Sprintf("store param %q: must match %s", param, storeParamPattern)}
	}
	return nil
}

// ParseLanguages parses repeated "lang=code" flag values.
// Repeating a language with a different code is an error.
func ParseLanguages(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		lang, code, ok := strings.Cut(pair, "=")
		lang = strings.TrimSpace(lang)
		code = strings.TrimSpace(code)
		if !ok || lang == "" || code == "" {
			return nil, fmt.Errorf("invalid language override %q: expected <lang>=<code>", pair)
		}
		if prev, exists := out[lang]; exists && prev != code {
			return nil, fmt.Errorf("language %q overridden twice (%s, %s)", lang, prev, code)
		}
		out[lang] = code
	}
	return out, nil
}
