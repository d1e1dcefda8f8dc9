package storefront

import "strings"

// StoreRecord is one active, non-administrative Magento store view.
// Produced by the data source, never mutated afterwards.
type StoreRecord struct {
	StoreID   int64  `json:"store_id" yaml:"store_id"`
	GroupID   int64  `json:"group_id" yaml:"group_id"`
	WebsiteID int64  `json:"website_id" yaml:"website_id"`
	Code      string `json:"code" yaml:"code"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
	Locale    string `json:"locale" yaml:"locale"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	IsDefault bool   `json:"is_default" yaml:"is_default"`
}

// Entry is a resolved (language, target) pair contributed by one store.
//
// Language is the normalized dash-lowercase key ("en", "en-us").
// URL may carry a store-selector query parameter.
type Entry struct {
	Language  string `json:"language"`
	URL       string `json:"url"`
	Code      string `json:"code"`
	IsDefault bool   `json:"is_default"`
}

// WithSelector appends the store-selector parameter to rawURL.
// Uses '&' when rawURL already carries a query string.
func WithSelector(rawURL, param, code string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
		if strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&") {
			sep = ""
		}
	}
	return rawURL + sep + param + "=" + code
}
