package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// MagentoFixture describes the rows of a throwaway Magento database.
type MagentoFixture struct {
	Prefix  string
	Groups  []Group
	Stores  []Store
	Configs []ConfigRow
}

// Group is a core_store_group row.
type Group struct {
	ID             int64
	WebsiteID      int64
	DefaultStoreID int64
}

// Store is a core_store row.
type Store struct {
	ID        int64
	Code      string
	WebsiteID int64
	GroupID   int64
	Active    bool
}

// ConfigRow is a core_config_data row. A nil Value is stored as NULL.
type ConfigRow struct {
	Scope   string
	ScopeID int64
	Path    string
	Value   *string
}

// Value returns a pointer to s, for ConfigRow.Value.
func Value(s string) *string {
	return &s
}

// StoreConfig returns the locale and base URL rows for a store-scoped view.
func StoreConfig(storeID int64, locale, baseURL string) []ConfigRow {
	return []ConfigRow{
		{Scope: "stores", ScopeID: storeID, Path: "general/locale/code", Value: Value(locale)},
		{Scope: "stores", ScopeID: storeID, Path: "web/unsecure/base_url", Value: Value(baseURL)},
	}
}

const magentoSchema = `
CREATE TABLE %[1]score_website (
	website_id INTEGER PRIMARY KEY,
	code TEXT NOT NULL
);
CREATE TABLE %[1]score_store_group (
	group_id INTEGER PRIMARY KEY,
	website_id INTEGER NOT NULL,
	default_store_id INTEGER NOT NULL
);
CREATE TABLE %[1]score_store (
	store_id INTEGER PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	website_id INTEGER NOT NULL,
	group_id INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE %[1]score_config_data (
	config_id INTEGER PRIMARY KEY AUTOINCREMENT,
	scope TEXT NOT NULL DEFAULT 'default',
	scope_id INTEGER NOT NULL DEFAULT 0,
	path TEXT NOT NULL,
	value TEXT,
	UNIQUE (scope, scope_id, path)
);
`

// NewMagentoDB writes f to a fresh SQLite file and returns its path.
// The admin store (id 0) and default website/group rows are always present.
func NewMagentoDB(t testing.TB, f MagentoFixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "magento.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer db.Close()

	exec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("fixture %q: %v", query, err)
		}
	}

	exec(fmt.Sprintf(magentoSchema, f.Prefix))
	p := f.Prefix

	exec(fmt.Sprintf(`INSERT INTO %score_website (website_id, code) VALUES (0, 'admin')`, p))
	exec(fmt.Sprintf(`INSERT INTO %score_store_group (group_id, website_id, default_store_id) VALUES (0, 0, 0)`, p))
	exec(fmt.Sprintf(`INSERT INTO %score_store (store_id, code, website_id, group_id, is_active) VALUES (0, 'admin', 0, 0, 1)`, p))

	websites := make(map[int64]bool)
	for _, g := range f.Groups {
		if !websites[g.WebsiteID] {
			websites[g.WebsiteID] = true
			exec(fmt.Sprintf(`INSERT INTO %score_website (website_id, code) VALUES (?, ?)`, p),
				g.WebsiteID, fmt.Sprintf("website%d", g.WebsiteID))
		}
		exec(fmt.Sprintf(`INSERT INTO %score_store_group (group_id, website_id, default_store_id) VALUES (?, ?, ?)`, p),
			g.ID, g.WebsiteID, g.DefaultStoreID)
	}
	for _, s := range f.Stores {
		exec(fmt.Sprintf(`INSERT INTO %score_store (store_id, code, website_id, group_id, is_active) VALUES (?, ?, ?, ?, ?)`, p),
			s.ID, s.Code, s.WebsiteID, s.GroupID, s.Active)
	}
	for _, c := range f.Configs {
		scope := c.Scope
		if scope == "" {
			scope = "default"
		}
		exec(fmt.Sprintf(`INSERT INTO %score_config_data (scope, scope_id, path, value) VALUES (?, ?, ?, ?)`, p),
			scope, c.ScopeID, c.Path, c.Value)
	}

	return path
}

// SharedShop is a two-website shop: "us" (default) and "uk" share
// http://shop.example/, "it" runs alone on its website. The locale of "uk"
// is inherited from website scope.
func SharedShop() MagentoFixture {
	configs := []ConfigRow{
		{Scope: "default", Path: "general/locale/code", Value: Value("en_US")},
		{Scope: "default", Path: "web/unsecure/base_url", Value: Value("http://shop.example/")},
		{Scope: "websites", ScopeID: 2, Path: "general/locale/code", Value: Value("it_IT")},
		{Scope: "websites", ScopeID: 2, Path: "web/unsecure/base_url", Value: Value("http://shop.example.it/")},
		{Scope: "stores", ScopeID: 2, Path: "general/locale/code", Value: Value("en_GB")},
	}
	return MagentoFixture{
		Groups: []Group{
			{ID: 1, WebsiteID: 1, DefaultStoreID: 1},
			{ID: 2, WebsiteID: 2, DefaultStoreID: 3},
		},
		Stores: []Store{
			{ID: 1, Code: "us", WebsiteID: 1, GroupID: 1, Active: true},
			{ID: 2, Code: "uk", WebsiteID: 1, GroupID: 1, Active: true},
			{ID: 3, Code: "it", WebsiteID: 2, GroupID: 2, Active: true},
			{ID: 4, Code: "old", WebsiteID: 2, GroupID: 2, Active: false},
		},
		Configs: configs,
	}
}

// LocalXMLConnection holds the values written by WriteLocalXML.
type LocalXMLConnection struct {
	Host, Username, Password, DBName, TablePrefix string
}

const localXMLTemplate = `<?xml version="1.0"?>
<config>
    <global>
        <resources>
            <db>
                <table_prefix><![CDATA[%s]]></table_prefix>
            </db>
            <default_setup>
                <connection>
                    <host><![CDATA[%s]]></host>
                    <username><![CDATA[%s]]></username>
                    <password><![CDATA[%s]]></password>
                    <dbname><![CDATA[%s]]></dbname>
                    <active>1</active>
                </connection>
            </default_setup>
        </resources>
    </global>
</config>
`

// WriteLocalXML creates app/etc/local.xml below a new temp Magento root and
// returns the root.
func WriteLocalXML(t testing.TB, c LocalXMLConnection) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "app", "etc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create %s: %v", dir, err)
	}
	content := fmt.Sprintf(localXMLTemplate, c.TablePrefix, c.Host, c.Username, c.Password, c.DBName)
	if err := os.WriteFile(filepath.Join(dir, "local.xml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write local.xml: %v", err)
	}
	return root
}
