package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/storefront"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	InputOptions
}

// PlanResult is the JSON payload of the plan command.
type PlanResult struct {
	Stores    []storefront.StoreRecord `json:"stores"`
	Mapping   []storefront.Entry       `json:"mapping"`
	Rules     []storefront.Entry       `json:"rules"`
	Files     []FileSummary            `json:"files"`
	Conflicts []assign.Conflict        `json:"conflicts,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan [MAGENTOPATH]",
		Short: "Show the language mapping and rule order without writing",
		Long: `Resolve the store views exactly like generate and print the canonical
language mapping, the ordered rule chain and the files generate would write.

When languages are ambiguous every conflict is listed, not only the first.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args, cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	return cmd
}

func runPlan(opts *PlanOptions, args []string, cmd *cobra.Command) error {
	runID := opts.runID()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   runID,
	}
	logger := slog.Default().With("run_id", runID, "command", "plan")

	s, err := resolveSettings(cmd, &opts.InputOptions, args)
	if err != nil {
		return formatter.Fail(err, nil)
	}

	records, err := loadRecords(commandContext(cmd), s, logger)
	if err != nil {
		return formatter.Fail(err, nil)
	}
	formatter.VerboseLog("Loaded %d store view(s) via %s", len(records), s.db.Driver)

	out, err := engine.Run(records, s.engine, logger)
	if err != nil {
		if out == nil || out.Assignment == nil {
			return formatter.Fail(err, nil)
		}
		if opts.Format != "json" {
			fmt.Fprintln(formatter.Writer, formatConflicts(out.Assignment.Conflicts))
		}
		return formatter.Fail(err, out.Assignment.Conflicts)
	}

	result := PlanResult{
		Stores:    records,
		Mapping:   out.Assignment.Mapping.Entries(),
		Rules:     out.Rules,
		Files:     summarize(out.Files),
		Conflicts: out.Assignment.Conflicts,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(formatPlanText(result))
}

func formatConflicts(conflicts []assign.Conflict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %d ambiguous language(s):", len(conflicts))
	for _, c := range conflicts {
		fmt.Fprintf(&b, "\n  %s: %s", c.Language, strings.Join(c.Codes, ", "))
	}
	return b.String()
}

func formatPlanText(r PlanResult) string {
	var b strings.Builder

	b.WriteString("Stores:")
	for _, s := range r.Stores {
		marker := ""
		if s.IsDefault {
			marker = "  (default)"
		}
		fmt.Fprintf(&b, "\n  %-10s %-8s %s%s", s.Code, s.Locale, s.BaseURL, marker)
	}

	b.WriteString("\n\nLanguages:")
	for _, e := range r.Mapping {
		fmt.Fprintf(&b, "\n  %-8s → %s  %s", e.Language, e.Code, e.URL)
	}

	b.WriteString("\n\nRules:")
	for i, e := range r.Rules {
		fmt.Fprintf(&b, "\n  %d. %-8s %s", i+1, e.Language, e.URL)
	}

	b.WriteString("\n\nFiles:")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n  %s  %s  %d rule(s)", f.Name, f.URL, f.Rules)
	}

	if len(r.Conflicts) > 0 {
		b.WriteString("\n\nSkipped:")
		for _, c := range r.Conflicts {
			fmt.Fprintf(&b, "\n  %s: %s", c.Language, strings.Join(c.Codes, ", "))
		}
	}
	return b.String()
}
