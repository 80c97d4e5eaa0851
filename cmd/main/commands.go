package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"product-matcher/internal/config"
	"product-matcher/internal/fileio"
	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
	"product-matcher/internal/matching/service"
)

var (
	configDir   string
	catalogFile string
	dictFile    string
	threshold   float64
	logLevel    string

	batchInput  string
	batchOutput string
)

var rootCmd = &cobra.Command{
	Use:           "product-matcher",
	Short:         "Match free-text product titles to catalog SPU/SKU",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var matchCmd = &cobra.Command{
	Use:   "match <title>",
	Short: "Match one title and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match every title of a file and write results (.xlsx, .csv or .json)",
	RunE:  runBatch,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config", "", "directory with config.yaml")
	pf.StringVar(&catalogFile, "catalog", "", "catalog file (.xlsx/.xls/.csv/.json), overrides catalog_file")
	pf.StringVar(&dictFile, "dict", "", "dictionaries YAML overlay, overrides dict_file")
	pf.Float64Var(&threshold, "threshold", 0, "minimum SPU score, overrides threshold")
	pf.StringVar(&logLevel, "log-level", "", "overrides log_level")

	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "titles file (.txt/.csv/.xlsx/.xls)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "results.xlsx", "results file")
	_ = batchCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(matchCmd, batchCmd)
}

type app struct {
	cfg     config.Config
	log     zerolog.Logger
	matcher *service.Matcher
	catalog *service.Catalog
}

// setup: конфиг, логгер, словари, каталог. Всё, что может упасть, падает
// здесь, до первого запроса.
func setup(ctx context.Context) (*app, error) {
	var dirs []string
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		return nil, err
	}
	if catalogFile != "" {
		cfg.CatalogFile = catalogFile
	}
	if dictFile != "" {
		cfg.DictFile = dictFile
	}
	if threshold > 0 {
		cfg.Threshold = threshold
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := config.SetupLogger(cfg)

	d, err := dict.Load(cfg.DictFile)
	if err != nil {
		return nil, err
	}
	if bad := d.UnbalancedWeights(); len(bad) > 0 {
		logger.Warn().Strs("product_types", bad).Msg("spec weights do not sum to 1.0")
	}
	m := service.NewMatcher(d, service.Options{
		Threshold: cfg.Threshold,
		Workers:   cfg.Workers,
		Logger:    &logger,
		Tracer:    service.LogTracer{Log: logger},
	})

	if cfg.CatalogFile == "" {
		return nil, fmt.Errorf("catalog file is required (--catalog or PMATCH_CATALOG_FILE)")
	}
	f, err := os.Open(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	entries, err := fileio.ReadCatalog(f, cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	cat, err := m.Preprocess(ctx, entries)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, matcher: m, catalog: cat}, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	res := a.matcher.Match(strings.Join(args, " "), a.catalog)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}

	in, err := os.Open(batchInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	titles, err := fileio.ReadTitles(in, batchInput)
	in.Close()
	if err != nil {
		return err
	}

	started := time.Now()
	results := make([]model.Result, len(titles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, t := range titles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.matcher.Match(t, a.catalog)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	matched := 0
	for _, r := range results {
		if r.SPU != nil {
			matched++
		}
	}

	out, err := os.Create(batchOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fileio.WriteResults(out, batchOutput, results); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	a.log.Info().
		Int("titles", len(titles)).
		Int("matched", matched).
		Dur("took", time.Since(started)).
		Str("output", batchOutput).
		Msg("batch done")
	return nil
}
