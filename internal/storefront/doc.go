// Package storefront provides the record types shared by every stage of the
// redirector pipeline.
//
// This package contains type definitions and small URL helpers only. All
// other internal packages import storefront; storefront imports nothing
// internal.
//
// Data flow:
//   - store reads StoreRecord values from Magento
//   - assign turns records into Entry values and a canonical Mapping
//   - optimize orders the canonical entries into a rule chain
//   - render turns the rule chain into one nginx snippet per base URL
package storefront
