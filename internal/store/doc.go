// Package store reads storefront configuration from a Magento 1 database.
//
// The store exposes exactly what the redirector needs:
//   - Stores: active store views, excluding the admin store
//   - IsDefaultStore: whether a view is its group's default
//   - ConfigValue: a core_config_data value with scope fallback
//   - Records: the above folded into storefront.StoreRecord values
//
// # Scope Fallback
//
// Magento resolves configuration per store view by checking, in order:
//
//	scope='stores'   scope_id=<store_id>
//	scope='websites' scope_id=<website_id>
//	scope='default'  scope_id=0
//
// A NULL value counts as absent at that scope. A value absent at all three
// scopes is a *ConfigMissingError.
//
// # Connection
//
// Production runs read app/etc/local.xml and connect with the MySQL driver.
// Tests and offline dumps use SQLite; all queries are portable between both.
// Table names honor the table prefix configured in local.xml.
package store
