// Package render turns the ordered rule chain into nginx snippets, one per
// distinct base URL.
//
// Each snippet is meant to be included in the matching server block and
// expects $first_language to hold the visitor's first Accept-Language tag,
// lower-cased with '-' separators. Rules are emitted in chain order; a rule
// is omitted from a snippet when it would redirect to the snippet's own URL
// or when its language already belongs to the owning store.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/locale"
	"github.com/roach88/redirector/internal/storefront"
)

// Extension is appended to every generated file name.
const Extension = ".conf"

var snippet = template.Must(template.New("snippet").Parse(
	`# baseurl = {{.URL}}
# store = {{.Owner.Code}}
{{range .Rules}}if ($first_language ~* '^{{.Language}}') {
    rewrite /.* {{.URL}} break;
}
{{end}}`))

// Options controls file naming.
type Options struct {
	// Basename prefixes every file name: "<Basename><code>.conf".
	Basename string
}

// File is one rendered snippet.
type File struct {
	Name    string             `json:"name"`
	URL     string             `json:"url"`
	Owner   storefront.Entry   `json:"owner"`
	Rules   []storefront.Entry `json:"rules"`
	Content []byte             `json:"-"`
}

// Plan renders a snippet for every site. Nothing touches the filesystem.
func Plan(sites []assign.Site, rules []storefront.Entry, opts Options) ([]File, error) {
	files := make([]File, 0, len(sites))
	names := make(map[string]string, len(sites))

	for _, site := range sites {
		f := File{
			Name:  opts.Basename + site.Owner.Code + Extension,
			URL:   site.BaseURL,
			Owner: site.Owner,
			Rules: RulesFor(site.Owner, rules),
		}
		if prev, dup := names[f.Name]; dup {
			return nil, fmt.Errorf("file %s generated for both %s and %s", f.Name, prev, site.BaseURL)
		}
		names[f.Name] = site.BaseURL

		var buf bytes.Buffer
		if err := snippet.Execute(&buf, f); err != nil {
			return nil, fmt.Errorf("render %s: %w", f.Name, err)
		}
		f.Content = buf.Bytes()
		files = append(files, f)
	}
	return files, nil
}

// RulesFor filters the chain for the site owned by owner.
func RulesFor(owner storefront.Entry, rules []storefront.Entry) []storefront.Entry {
	out := make([]storefront.Entry, 0, len(rules))
	for _, r := range rules {
		if r.URL == owner.URL {
			continue
		}
		if locale.IsPrefixOf(r.Language, owner.Language) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Write stores every file in dir, creating dir if needed.
//
// Files are written to a temporary name and renamed into place so a reader
// never sees a partial snippet. Concurrent runs on one directory are not
// coordinated; the last writer wins.
func Write(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.Name), f.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, content []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
