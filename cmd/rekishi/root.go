package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/cli"
	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/indexer"
	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/pkg/utils"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
	provider   string
	azure      bool
}

// setup loads the config, applies flag overrides and builds the logger.
// One-shot commands use the quieter CLI logger.
func (g *globalOptions) setup(oneShot bool) (*config.Config, *zap.Logger, error) {
	cfg, _, err := loadConfig(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.provider != "" {
		cfg.Embedding.Provider = g.provider
	}
	if g.azure {
		cfg.Embedding.Provider = config.ProviderAzure
	}
	cfg.Debug = cfg.Debug || g.debug

	newLogger := utils.NewLogger
	if oneShot {
		newLogger = utils.NewCLILogger
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// rootOptions are the ingest and query flags of the root command.
type rootOptions struct {
	embed      string
	domain     string
	visitCount int
	typedCount int
	transition string
	newest     bool
	limit      int
	output     string
}

// NewRootCmd creates the root rekishi command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "rekishi [flags] [query...]",
		Short: "rekishi - semantic search over your browsing history",
		Long: "rekishi embeds browsing-history exports into a vector index and answers\n" +
			"natural-language queries against it, with optional metadata filters.",
		Example: "  rekishi --embed history.csv\n" +
			"  rekishi \"go concurrency patterns\"\n" +
			"  rekishi --domain github.com --newest \"release notes\"\n" +
			"  rekishi --azure --output json \"tax forms\"",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, g, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", defaultConfigPath, "config file path")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")
	pf.StringVar(&g.provider, "provider", "", "embedding provider: local, azure or ollama")
	pf.BoolVar(&g.azure, "azure", false, "use Azure OpenAI embeddings (same as --provider azure)")

	f := root.Flags()
	f.StringVar(&o.embed, "embed", "", "ingest a CSV or .xlsx history export")
	f.StringVar(&o.domain, "domain", "", "keep results whose URL contains this string")
	f.IntVar(&o.visitCount, "visit-count", 0, "keep results visited at most this many times")
	f.IntVar(&o.typedCount, "typed-count", 0, "keep results typed at most this many times")
	f.StringVar(&o.transition, "transition", "", "keep results with exactly this transition type")
	f.BoolVar(&o.newest, "newest", false, "order results newest first")
	f.IntVar(&o.limit, "limit", 0, "number of neighbors to retrieve (default from config)")
	f.StringVar(&o.output, "output", string(cli.OutputText), "output format: text or json")

	root.AddCommand(
		newServerCmd(g),
		newStatusCmd(g),
		newWatchCmd(g),
		newVersionCmd(),
	)
	return root
}

// checkUsage enforces that exactly one of an ingest file or a query is given.
func checkUsage(embed, query string) error {
	switch {
	case embed == "" && query == "":
		return &models.UsageError{Msg: "no --embed file or query given"}
	case embed != "" && query != "":
		return &models.UsageError{Msg: "--embed and a query cannot be combined"}
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string, g *globalOptions, o *rootOptions) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if err := checkUsage(o.embed, query); err != nil {
		// Usage problems print the hint and exit cleanly; --debug adds the reason.
		if g.debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "usage: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.UsageHint)
		return nil
	}
	format, err := cli.ParseFormat(o.output)
	if err != nil {
		return err
	}
	cfg, logger, err := g.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if o.embed != "" {
		return runEmbed(cmd, cfg, logger, o.embed, format)
	}
	return runQuery(cmd, cfg, logger, o, query, format)
}

func runEmbed(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, path string, format cli.SearchOutputFormat) error {
	var opts []indexer.IndexerOption
	if format == cli.OutputText {
		opts = append(opts, indexer.WithProgress(cli.NewProgressBar(cmd.ErrOrStderr()).Update))
	}
	components, err := initializeComponents(cmd.Context(), cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer components.Close()

	report, err := components.Indexer.IngestFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return cli.WriteReport(cmd.OutOrStdout(), report, format)
}

func runQuery(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, o *rootOptions, text string, format cli.SearchOutputFormat) error {
	query := &models.SearchQuery{
		Query:         text,
		Limit:         o.limit,
		Filters:       filtersFromFlags(cmd, o),
		SortByRecency: o.newest,
	}
	components, err := initializeComponents(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	response, err := components.Engine.Query(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), response, format)
}

// filtersFromFlags configures only the filters whose flags were set, so that
// an explicit --visit-count 0 still filters.
func filtersFromFlags(cmd *cobra.Command, o *rootOptions) models.Filters {
	var f models.Filters
	flags := cmd.Flags()
	if flags.Changed("domain") {
		f.Domain = &o.domain
	}
	if flags.Changed("visit-count") {
		f.VisitCountMax = &o.visitCount
	}
	if flags.Changed("typed-count") {
		f.TypedCountMax = &o.typedCount
	}
	if flags.Changed("transition") {
		f.Transition = &o.transition
	}
	return f
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
