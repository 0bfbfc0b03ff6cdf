package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"stackgp/internal/evo"
	"stackgp/pkg/stackgp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOptions struct {
	storeKind    string
	dbPath       string
	artifactsDir string
	logLevel     string
	metricsAddr  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "stackgpctl",
		Short:         "Evolve stack-machine programs that fit integer datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.storeKind, "store", "memory", "run history backend: memory|sqlite")
	flags.StringVar(&opts.dbPath, "db-path", "stackgp.db", "sqlite database path")
	flags.StringVar(&opts.artifactsDir, "artifacts-dir", "runs", "directory for run artifacts and the run index")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during a run")

	root.AddCommand(
		newRunCmd(opts),
		newRunsCmd(opts),
		newShowCmd(opts),
		newTargetsCmd(),
	)
	return root
}

func (o *globalOptions) client(cmd *cobra.Command, metrics *evo.Metrics) (*stackgp.Client, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	client, err := stackgp.New(stackgp.Options{
		StoreKind:    o.storeKind,
		DBPath:       o.dbPath,
		ArtifactsDir: o.artifactsDir,
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

type runFlags struct {
	config           string
	target           string
	dataset          string
	samples          int
	generations      int
	seed             int64
	workers          int
	population       int
	selection        string
	aggregation      string
	vocabulary       string
	crossoverRate    float64
	additionRate     float64
	removalRate      float64
	reproductionRate float64
	plotHeight       int
	noPlot           bool
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a population against a target or CSV dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(f.config)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			req, err := cfg.request()
			if err != nil {
				return err
			}
			return runRun(cmd, opts, req, f.noPlot)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.config, "config", "", "run config file (yaml or json)")
	flags.StringVar(&f.target, "target", "", "named target function")
	flags.StringVar(&f.dataset, "dataset", "", "CSV dataset; the last column is the expected output")
	flags.IntVar(&f.samples, "samples", 0, "rows generated for a named target")
	flags.IntVar(&f.generations, "generations", 0, "number of generations")
	flags.Int64Var(&f.seed, "seed", 0, "random seed")
	flags.IntVar(&f.workers, "workers", 0, "parallel workers (default: number of CPUs)")
	flags.IntVar(&f.population, "population", 0, "population size")
	flags.StringVar(&f.selection, "selection", "", "selection policy: roulette|truncation")
	flags.StringVar(&f.aggregation, "aggregation", "", "error aggregation: absolute|squared")
	flags.StringVar(&f.vocabulary, "vocabulary", "", "comma separated operators, e.g. neg,sum,multiply")
	flags.Float64Var(&f.crossoverRate, "crossover-rate", 0, "crossover rate")
	flags.Float64Var(&f.additionRate, "add-rate", 0, "addition mutation rate")
	flags.Float64Var(&f.removalRate, "remove-rate", 0, "removal mutation rate")
	flags.Float64Var(&f.reproductionRate, "reproduction-rate", 0, "reproduction rate (truncation selection)")
	flags.IntVar(&f.plotHeight, "plot-height", 0, "fitness plot height in rows")
	flags.BoolVar(&f.noPlot, "no-plot", false, "skip the fitness plot")
	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (f *runFlags) apply(cmd *cobra.Command, cfg *runConfig) {
	changed := cmd.Flags().Changed
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("dataset") {
		cfg.Dataset = f.dataset
		if !changed("target") {
			cfg.Target = ""
		}
	}
	if changed("samples") {
		cfg.Samples = f.samples
	}
	if changed("generations") {
		cfg.Generations = f.generations
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("population") {
		cfg.Properties.PopulationSize = f.population
	}
	if changed("selection") {
		cfg.Properties.Selection = f.selection
	}
	if changed("aggregation") {
		cfg.Properties.Aggregation = f.aggregation
	}
	if changed("vocabulary") {
		cfg.Properties.Vocabulary = f.vocabulary
	}
	if changed("crossover-rate") {
		cfg.Properties.CrossOverRate = f.crossoverRate
	}
	if changed("add-rate") {
		cfg.Properties.AdditionMutationRate = f.additionRate
	}
	if changed("remove-rate") {
		cfg.Properties.RemovalMutationRate = f.removalRate
	}
	if changed("reproduction-rate") {
		cfg.Properties.ReproductionRate = f.reproductionRate
	}
	if changed("plot-height") {
		cfg.PlotHeight = f.plotHeight
	}
}

func runRun(cmd *cobra.Command, opts *globalOptions, req stackgp.RunRequest, noPlot bool) error {
	ctx := cmd.Context()
	var metrics *evo.Metrics
	var shutdown func()
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = evo.NewMetrics(reg)
		var err error
		shutdown, err = serveMetrics(opts.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	client, logger, err := opts.client(cmd, metrics)
	if err != nil {
		return err
	}
	defer client.Close()
	if opts.metricsAddr != "" {
		logger.Info("serving metrics", slog.String("addr", opts.metricsAddr))
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	printRunSummary(cmd.OutOrStdout(), summary, !noPlot)
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

func newRunsCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := opts.client(cmd, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Runs(cmd.Context(), stackgp.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), items, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the fitness history of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.client(cmd, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			run, ok, err := client.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run not found: %s", args[0])
			}
			printRunRecord(cmd.OutOrStdout(), run)
			return nil
		},
	}
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the named target functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := stackgp.New(stackgp.Options{})
			if err != nil {
				return err
			}
			defer client.Close()
			for _, target := range client.Targets() {
				fmt.Fprintf(cmd.OutOrStdout(), "target=%s description=%q\n", target.Name, target.Description)
			}
			return nil
		},
	}
}
