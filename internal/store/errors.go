package store

import (
	"errors"
	"fmt"
)

// ConfigMissingError reports a configuration path with no value at store,
// website, or default scope.
type ConfigMissingError struct {
	StoreCode string
	Path      string
}

// Error implements the error interface.
func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("store %q: %s is not set at store, website or default scope", e.StoreCode, e.Path)
}

// IsConfigMissing returns true if err is or wraps a ConfigMissingError.
func IsConfigMissing(err error) bool {
	var ce *ConfigMissingError
	return errors.As(err, &ce)
}

// UnresolvedURLError reports a base URL that still holds a Magento
// placeholder such as {{base_url}}, which is only known per request.
type UnresolvedURLError struct {
	StoreCode   string
	Path        string
	Value       string
	Placeholder string
}

// Error implements the error interface.
func (e *UnresolvedURLError) Error() string {
	return fmt.Sprintf("store %q: %s = %q: placeholder %s cannot be resolved; set an absolute URL",
		e.StoreCode, e.Path, e.Value, e.Placeholder)
}
