package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/render"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	InputOptions
}

// FileSummary describes one generated snippet.
type FileSummary struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Store string `json:"store"`
	Rules int    `json:"rules"`
}

// GenerateResult is the JSON payload of a successful generate run.
type GenerateResult struct {
	Directory string        `json:"directory"`
	Files     []FileSummary `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [MAGENTOPATH]",
		Short: "Write one nginx snippet per store base URL",
		Long: `Read the store views of a Magento installation and write the nginx
language redirect snippets into --directory.

The database is located through MAGENTOPATH/app/etc/local.xml unless --dsn
is given. Nothing is written when any language is ambiguous; resolve the
conflict with --language <lang>=<store code> or pass --skip-ambiguous.`,
		Example: `  redirector generate -d /etc/nginx/lang /var/www/magento
  redirector generate -d out -l en=us -l de=de --skip admin_test /var/www/magento
  redirector generate -d out --driver sqlite3 --dsn ./magento.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	return cmd
}

func runGenerate(opts *GenerateOptions, args []string, cmd *cobra.Command) error {
	runID := opts.runID()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   runID,
	}
	logger := slog.Default().With("run_id", runID, "command", "generate")

	s, err := resolveSettings(cmd, &opts.InputOptions, args)
	if err != nil {
		return formatter.Fail(err, nil)
	}
	if s.directory == "" {
		return formatter.Fail(withCode(ErrCodeInvalidOptions, errors.New("--directory is required")), nil)
	}

	records, err := loadRecords(commandContext(cmd), s, logger)
	if err != nil {
		return formatter.Fail(err, nil)
	}
	formatter.VerboseLog("Loaded %d store view(s) via %s", len(records), s.db.Driver)

	out, err := engine.Run(records, s.engine, logger)
	if err != nil {
		var details interface{}
		if out != nil && out.Assignment != nil {
			details = out.Assignment.Conflicts
		}
		return formatter.Fail(err, details)
	}

	for _, f := range out.Files {
		formatter.VerboseLog("Rendered %s for %s (%d rule(s))", f.Name, f.URL, len(f.Rules))
	}
	if err := render.Write(s.directory, out.Files); err != nil {
		return formatter.Fail(withCode(ErrCodeWriteFailed, err), nil)
	}
	logger.Info("snippets written", "directory", s.directory, "files", len(out.Files))

	result := GenerateResult{Directory: s.directory, Files: summarize(out.Files)}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(formatGenerateText(result))
}

func summarize(files []render.File) []FileSummary {
	out := make([]FileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, FileSummary{
			Name:  f.Name,
			URL:   f.URL,
			Store: f.Owner.Code,
			Rules: len(f.Rules),
		})
	}
	return out
}

func formatGenerateText(r GenerateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Wrote %d file(s) to %s", len(r.Files), r.Directory)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n  %s  %s  %d rule(s)", f.Name, f.URL, f.Rules)
	}
	return b.String()
}
