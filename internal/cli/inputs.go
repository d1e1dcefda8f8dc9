package cli

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/config"
	"github.com/roach88/redirector/internal/engine"
	"github.com/roach88/redirector/internal/store"
	"github.com/roach88/redirector/internal/storefront"
)

// InputOptions holds the flags shared by generate and plan.
type InputOptions struct {
	ConfigFile    string
	Directory     string
	Languages     []string
	LegacyLangs   []string // --languages, kept for existing deploy scripts
	Skip          []string
	Basename      string
	StoreParam    string
	SkipAmbiguous bool
	Secure        bool
	Driver        string
	DSN           string
	TablePrefix   string
}

// settings is the merged result of the options file and flags.
type settings struct {
	directory string
	engine    engine.Config
	db        store.Config
}

func addInputFlags(cmd *cobra.Command, in *InputOptions) {
	f := cmd.Flags()
	f.StringVarP(&in.ConfigFile, "config", "c", "", "YAML options file")
	f.StringVarP(&in.Directory, "directory", "d", "", "target directory for configuration files")
	f.StringArrayVarP(&in.Languages, "language", "l", nil, "language override <lang>=<store code> (repeatable)")
	f.StringArrayVar(&in.LegacyLangs, "languages", nil, "alias of --language")
	_ = f.MarkHidden("languages")
	f.StringArrayVarP(&in.Skip, "skip", "s", nil, "store code to exclude (repeatable)")
	f.StringVarP(&in.Basename, "basename", "b", "", "prefix for generated file names")
	f.StringVar(&in.StoreParam, "store-param", assign.DefaultSelectorParam, "query parameter selecting the store on shared URLs")
	f.BoolVar(&in.SkipAmbiguous, "skip-ambiguous", false, "drop ambiguous languages instead of failing")
	f.BoolVar(&in.Secure, "secure", false, "use web/secure/base_url instead of web/unsecure/base_url")
	f.StringVar(&in.Driver, "driver", string(store.MySQL), "database driver when --dsn is given (mysql|sqlite3)")
	f.StringVar(&in.DSN, "dsn", "", "database DSN; bypasses app/etc/local.xml")
	f.StringVar(&in.TablePrefix, "table-prefix", "", "Magento table prefix (defaults to local.xml)")
}

// resolveSettings merges the options file with flags. A flag set on the
// command line wins over the file; the file wins over flag defaults.
func resolveSettings(cmd *cobra.Command, in *InputOptions, args []string) (*settings, error) {
	file := &config.Options{}
	if in.ConfigFile != "" {
		loaded, err := config.Load(in.ConfigFile)
		if err != nil {
			var ve *config.ValidationError
			if errors.As(err, &ve) {
				return nil, err
			}
			return nil, withCode(ErrCodeNotFound, err)
		}
		file = loaded
	}

	flags := cmd.Flags()
	pick := func(name, flagValue, fileValue string) string {
		if flags.Changed(name) || fileValue == "" {
			return flagValue
		}
		return fileValue
	}
	pickBool := func(name string, flagValue, fileValue bool) bool {
		if flags.Changed(name) {
			return flagValue
		}
		return fileValue || flagValue
	}

	overrides := make(map[string]string, len(file.Languages))
	for lang, code := range file.Languages {
		overrides[lang] = code
	}
	fromFlags, err := config.ParseLanguages(append(slices.Clone(in.LegacyLangs), in.Languages...))
	if err != nil {
		return nil, withCode(ErrCodeInvalidOptions, err)
	}
	for lang, code := range fromFlags {
		overrides[lang] = code
	}

	skip := slices.Clone(file.Skip)
	for _, code := range in.Skip {
		if !slices.Contains(skip, code) {
			skip = append(skip, code)
		}
	}

	s := &settings{
		directory: pick("directory", in.Directory, file.Directory),
		engine: engine.Config{
			Overrides:     overrides,
			Skip:          skip,
			SelectorParam: pick("store-param", in.StoreParam, file.StoreParam),
			SkipAmbiguous: pickBool("skip-ambiguous", in.SkipAmbiguous, file.SkipAmbiguous),
			Basename:      pick("basename", in.Basename, file.Basename),
		},
	}

	if err := config.CheckStoreParam(s.engine.SelectorParam); err != nil {
		return nil, err
	}

	dsn := pick("dsn", in.DSN, file.Database.DSN)
	prefix := pick("table-prefix", in.TablePrefix, file.Database.TablePrefix)
	secure := pickBool("secure", in.Secure, file.Secure)

	switch {
	case dsn != "":
		s.db = store.Config{
			Driver:      store.Driver(pick("driver", in.Driver, file.Database.Driver)),
			DSN:         dsn,
			TablePrefix: prefix,
			Secure:      secure,
		}
	case len(args) == 1:
		lx, err := store.ReadLocalXML(args[0])
		if err != nil {
			return nil, withCode(ErrCodeNotFound, err)
		}
		s.db = lx.Config()
		s.db.Secure = secure
		if flags.Changed("table-prefix") || file.Database.TablePrefix != "" {
			s.db.TablePrefix = prefix
		}
	default:
		return nil, withCode(ErrCodeInvalidOptions, errors.New("MAGENTOPATH or --dsn is required"))
	}

	return s, nil
}

// loadRecords reads every active store view from the configured database.
func loadRecords(ctx context.Context, s *settings, logger *slog.Logger) ([]storefront.StoreRecord, error) {
	logger.Debug("opening database", "driver", s.db.Driver, "prefix", s.db.TablePrefix)
	st, err := store.Open(ctx, s.db)
	if err != nil {
		return nil, withCode(ErrCodeDatabase, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	records, err := st.Records(ctx)
	if err != nil {
		return nil, withCode(ErrCodeDatabase, err)
	}
	logger.Info("stores loaded", "count", len(records))
	return records, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
