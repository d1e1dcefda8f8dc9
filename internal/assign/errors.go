package assign

import (
	"errors"
	"fmt"
	"strings"
)

// AmbiguousLanguageError reports two or more stores resolving to the same
// language key with no operator override to break the tie.
type AmbiguousLanguageError struct {
	// Language is the contested key.
	Language string

	// Codes lists every store deriving the key, in input order.
	Codes []string
}

// Error implements the error interface.
func (e *AmbiguousLanguageError) Error() string {
	return fmt.Sprintf("ambiguous language %q: stores %s (use --language %s=<code>)",
		e.Language, strings.Join(e.Codes, ", "), e.Language)
}

// InvalidOverrideError reports an operator override naming a language or
// store code that is not part of the resolved set.
type InvalidOverrideError struct {
	Language string
	Code     string
	Reason   string
}

// Error implements the error interface.
func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override %s=%s: %s", e.Language, e.Code, e.Reason)
}

// DuplicateCodeError reports two input records sharing a store code.
type DuplicateCodeError struct {
	Code string
}

// Error implements the error interface.
func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("duplicate store code %q", e.Code)
}

// IsAmbiguous returns true if err is or wraps an AmbiguousLanguageError.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousLanguageError
	return errors.As(err, &ae)
}

// IsInvalidOverride returns true if err is or wraps an InvalidOverrideError.
func IsInvalidOverride(err error) bool {
	var ie *InvalidOverrideError
	return errors.As(err, &ie)
}
