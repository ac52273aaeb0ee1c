package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aluiziolira/go-product-details/catalog"
	"github.com/aluiziolira/go-product-details/config"
	"github.com/aluiziolira/go-product-details/details"
	"github.com/aluiziolira/go-product-details/export"
	"github.com/aluiziolira/go-product-details/models"
	"github.com/aluiziolira/go-product-details/tui"
)

const (
	exitConfig  = 1
	exitFailure = 2

	defaultWidth = 100
)

// exitError carries a process exit code out of RunE.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

// flagValues holds raw flag values; only flags the user changed are applied.
type flagValues struct {
	configPath   string
	baseURL      string
	token        string
	tokenFile    string
	timeout      time.Duration
	metricsAddr  string
	verbose      bool
	plain        bool
	exportFile   string
	exportFormat string
	logFile      string
	cacheSize    int
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()
	var flags flagValues

	cmd := &cobra.Command{
		Use:   "productdetails <id>",
		Short: "Show a catalog product with its similar products",
		Long: "Fetches one product from the catalog service and renders it in the terminal,\n" +
			"together with a quantity selector and the list of similar products.",
		Example: "  productdetails 16 --token-file ~/.catalog-token\n" +
			"  productdetails 16 --plain --export out/product.csv --format dual",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				cmd.PrintErrf("invalid configuration: %v\n", err)
				return exitError{code: exitConfig, err: err}
			}
			return run(cmd, cfg, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.baseURL, "base-url", defaults.BaseURL, "Catalog service base URL")
	f.StringVar(&flags.token, "token", "", "Bearer token for the catalog service")
	f.StringVar(&flags.tokenFile, "token-file", "", "File containing the bearer token")
	f.DurationVar(&flags.timeout, "timeout", defaults.Timeout, "Request timeout")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	f.BoolVar(&flags.plain, "plain", false, "Fetch once and print without the interactive view")
	f.StringVar(&flags.exportFile, "export", "", "Write the fetched snapshot to this file (plain mode)")
	f.StringVar(&flags.exportFormat, "format", defaults.ExportFormat, "Export format: csv, json, or dual")
	f.StringVar(&flags.logFile, "log-file", "", "Log file for interactive mode")
	f.IntVar(&flags.cacheSize, "cache-size", defaults.CacheSize, "Number of rendered similar-product cards to keep")

	return cmd
}

// loadConfig layers defaults, the YAML file, the environment and changed flags.
func loadConfig(cmd *cobra.Command, flags *flagValues) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		if err := cfg.LoadFile(flags.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}
	if changed("token") {
		cfg.Token = flags.token
	}
	if changed("token-file") {
		cfg.TokenFile = flags.tokenFile
	}
	if changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = flags.metricsAddr
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("plain") {
		cfg.Plain = flags.plain
	}
	if changed("export") {
		cfg.ExportFile = flags.exportFile
	}
	if changed("format") {
		cfg.ExportFormat = flags.exportFormat
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("cache-size") {
		cfg.CacheSize = flags.cacheSize
	}
	cfg.ExportFormat = strings.ToLower(cfg.ExportFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config, productID string) error {
	logOut, closeLog, err := logOutput(cmd, cfg)
	if err != nil {
		return exitError{code: exitConfig, err: err}
	}
	defer closeLog()

	logger, level := newLogger(logOut, cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	token, err := cfg.ResolveToken()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return exitError{code: exitConfig, err: err}
	}

	metrics := catalog.NewMetrics()
	client, err := catalog.NewClient(cfg, metrics)
	if err != nil {
		slog.Error("initialising catalog client", slog.Any("error", err))
		return exitError{code: exitConfig, err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, metrics)
		defer shutdownMetricsServer(srv)
	}

	fetcher := details.NewFetcher(client,
		details.WithMetrics(metrics),
		details.WithTransitionHook(func(s details.FetchStatus) {
			slog.Debug("fetch status changed", slog.String("product_id", productID), slog.String("status", s.String()))
		}),
	)

	similar, err := tui.NewSimilarItems(cfg.CacheSize)
	if err != nil {
		return exitError{code: exitConfig, err: err}
	}

	slog.Info("fetching product",
		slog.String("product_id", productID),
		slog.String("base_url", cfg.BaseURL),
	)

	if cfg.Plain {
		return runPlain(ctx, cmd.OutOrStdout(), cfg, fetcher, similar, productID, token)
	}
	return runInteractive(ctx, fetcher, similar, productID, token)
}

func runPlain(ctx context.Context, out io.Writer, cfg *config.Config, fetcher *details.Fetcher, similar *tui.SimilarItems, productID, token string) error {
	outcome := fetcher.FetchDetail(ctx, productID, token)
	width := terminalWidth(out)

	if outcome.Status != details.StatusSuccess {
		fmt.Fprintln(out, tui.RenderFailure(outcome.Reason, width))
		err := outcome.Err
		if err == nil {
			err = errors.New("product fetch failed")
		}
		return exitError{code: exitFailure, err: err}
	}

	snap := fetcher.Snapshot()
	fmt.Fprintln(out, tui.RenderDetail(snap.Product, details.NewQuantity().Count(), similar.Render(snap.Similar, width), width))

	if cfg.ExportFile != "" {
		paths, err := writeSnapshot(cfg, snap)
		if err != nil {
			slog.Error("export failed", slog.Any("error", err))
			return err
		}
		slog.Info("snapshot exported",
			slog.Any("files", paths),
			slog.String("format", cfg.ExportFormat),
			slog.Int("similar_products", len(snap.Similar)),
		)
	}
	return nil
}

func runInteractive(ctx context.Context, fetcher *details.Fetcher, similar *tui.SimilarItems, productID, token string) error {
	model := tui.NewModel(ctx, fetcher, productID, token,
		tui.WithSimilarItems(similar),
		tui.WithAddToCart(func(id models.ID, quantity int) {
			slog.Info("add to cart", slog.String("product_id", string(id)), slog.Int("quantity", quantity))
		}),
		tui.WithNavigate(func(path string) {
			slog.Info("navigate", slog.String("path", path))
		}),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run interactive view: %w", err)
	}
	return nil
}

func writeSnapshot(cfg *config.Config, snap models.Snapshot) (paths []string, err error) {
	writer, err := export.New(cfg.ExportFormat, cfg.ExportFile)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", cerr)
		}
		if err == nil {
			err = writer.Validate()
		}
	}()

	if err := writer.Write(snap); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return writer.Paths(), nil
}

func startMetricsServer(addr string, metrics *catalog.Metrics) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return srv
}

func shutdownMetricsServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

// logOutput picks the log destination: stderr in plain mode, the log file
// or nowhere while the interactive view owns the terminal.
func logOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Plain {
		return cmd.ErrOrStderr(), func() {}, nil
	}
	if cfg.LogFile == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newLogger(out io.Writer, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(out) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), level
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
