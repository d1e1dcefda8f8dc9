// Package harness runs end-to-end redirect scenarios.
//
// A scenario describes a Magento shop as a list of store views plus the
// operator options, and states what the run must produce. The harness loads
// the shop into a throwaway SQLite database, reads it back through the
// store package and runs the full pipeline, so a scenario exercises the
// same code path as the generate command.
//
// # Scenario Format
//
//	name: shared_shop
//	description: "us and uk share one URL"
//	stores:
//	  - { code: us, locale: en_US, base_url: "http://shop.example/", website: 1, default: true }
//	  - { code: uk, locale: en_GB, base_url: "http://shop.example/", website: 1 }
//	options:
//	  languages: { en: us }
//	expect:
//	  error: ambiguous        # optional: ambiguous | invalid_override | config_missing
//	assertions:
//	  - type: mapping
//	    language: en
//	    code: us
//	  - type: rule_order
//	    languages: [en-gb, en]
//	  - type: file_rules
//	    file: us.conf
//	    languages: [en-gb]
//	  - type: conflict
//	    language: en
//	    codes: [us, uk]
//
// A store with an empty locale or base_url gets no row for that path, which
// is how a config_missing scenario is written.
//
// # Golden Files
//
// RunWithGolden compares the generated snippets, concatenated in file
// order, against testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
