package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/redirector/internal/storefront"
)

// Magento table names, before prefixing.
const (
	tableStore      = "core_store"
	tableGroup      = "core_store_group"
	tableConfigData = "core_config_data"
)

// Configuration paths read for every store view.
const (
	PathLocale      = "general/locale/code"
	PathUnsecureURL = "web/unsecure/base_url"
	PathSecureURL   = "web/secure/base_url"
)

// unsecurePlaceholder is Magento's stock value of web/secure/base_url.
const unsecurePlaceholder = "{{unsecure_base_url}}"

var placeholder = regexp.MustCompile(`\{\{[^{}]*\}\}`)

const (
	adminStoreCode = "admin"
	defaultScopeID = 0
	scopeStores    = "stores"
	scopeWebsites  = "websites"
	scopeDefault   = "default"
)

// Stores returns active store views other than admin, ordered by store_id.
// Locale, BaseURL and IsDefault are left empty; see Records.
func (s *Store) Stores(ctx context.Context) ([]storefront.StoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT store_id, code, website_id, group_id, is_active
		FROM %s
		WHERE is_active = 1 AND code <> ?
		ORDER BY store_id ASC
	`, s.table(tableStore)), adminStoreCode)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var stores []storefront.StoreRecord
	for rows.Next() {
		var rec storefront.StoreRecord
		if err := rows.Scan(&rec.StoreID, &rec.Code, &rec.WebsiteID, &rec.GroupID, &rec.IsActive); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	// Return empty slice instead of nil
	if stores == nil {
		stores = []storefront.StoreRecord{}
	}

	return stores, nil
}

// IsDefaultStore reports whether rec is the default view of its group.
func (s *Store) IsDefaultStore(ctx context.Context, rec storefront.StoreRecord) (bool, error) {
	var defaultID int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT default_store_id
		FROM %s
		WHERE group_id = ?
	`, s.table(tableGroup)), rec.GroupID).Scan(&defaultID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("store %q: group %d not found", rec.Code, rec.GroupID)
	}
	if err != nil {
		return false, fmt.Errorf("query store group: %w", err)
	}
	return defaultID == rec.StoreID, nil
}

// ConfigValue resolves path for rec through store, website and default
// scope. ok is false when no scope holds a non-NULL value.
func (s *Store) ConfigValue(ctx context.Context, rec storefront.StoreRecord, path string) (value string, ok bool, err error) {
	scopes := []struct {
		scope string
		id    int64
	}{
		{scopeStores, rec.StoreID},
		{scopeWebsites, rec.WebsiteID},
		{scopeDefault, defaultScopeID},
	}

	query := fmt.Sprintf(`
		SELECT value
		FROM %s
		WHERE scope = ? AND scope_id = ? AND path = ?
	`, s.table(tableConfigData))

	for _, sc := range scopes {
		var v sql.NullString
		err := s.db.QueryRowContext(ctx, query, sc.scope, sc.id, path).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("query config %s (%s/%d): %w", path, sc.scope, sc.id, err)
		}
		if v.Valid {
			return v.String, true, nil
		}
	}
	return "", false, nil
}

// Records loads every active store view with its locale, base URL and
// default flag resolved.
func (s *Store) Records(ctx context.Context) ([]storefront.StoreRecord, error) {
	stores, err := s.Stores(ctx)
	if err != nil {
		return nil, err
	}

	for i := range stores {
		rec := &stores[i]

		if rec.Locale, err = s.require(ctx, *rec, PathLocale); err != nil {
			return nil, err
		}
		if rec.BaseURL, err = s.baseURL(ctx, *rec); err != nil {
			return nil, err
		}
		if rec.IsDefault, err = s.IsDefaultStore(ctx, *rec); err != nil {
			return nil, err
		}
	}
	return stores, nil
}

// baseURL resolves the store's base URL. A secure URL referencing
// {{unsecure_base_url}} is expanded from the unsecure path; any other
// placeholder left in the value is an *UnresolvedURLError.
func (s *Store) baseURL(ctx context.Context, rec storefront.StoreRecord) (string, error) {
	if !s.secure {
		return s.resolvedURL(ctx, rec, PathUnsecureURL)
	}

	v, err := s.require(ctx, rec, PathSecureURL)
	if err != nil {
		return "", err
	}
	if strings.Contains(v, unsecurePlaceholder) {
		unsecure, err := s.resolvedURL(ctx, rec, PathUnsecureURL)
		if err != nil {
			return "", err
		}
		v = strings.ReplaceAll(v, unsecurePlaceholder, unsecure)
	}
	return v, checkResolved(rec, PathSecureURL, v)
}

func (s *Store) resolvedURL(ctx context.Context, rec storefront.StoreRecord, path string) (string, error) {
	v, err := s.require(ctx, rec, path)
	if err != nil {
		return "", err
	}
	return v, checkResolved(rec, path, v)
}

func checkResolved(rec storefront.StoreRecord, path, value string) error {
	if ph := placeholder.FindString(value); ph != "" {
		return &UnresolvedURLError{StoreCode: rec.Code, Path: path, Value: value, Placeholder: ph}
	}
	return nil
}

func (s *Store) require(ctx context.Context, rec storefront.StoreRecord, path string) (string, error) {
	v, ok, err := s.ConfigValue(ctx, rec, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ConfigMissingError{StoreCode: rec.Code, Path: path}
	}
	return v, nil
}
