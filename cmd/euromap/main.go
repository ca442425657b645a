// Package main is the euromap command: an interactive political map of
// Europe, plus the stock API server and reporting helpers that feed it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"euromap/internal/config"
	"euromap/internal/detail"
	"euromap/internal/logging"
	"euromap/internal/news"
	"euromap/internal/regioninfo"
	"euromap/internal/scene"
	"euromap/internal/stock"
	"euromap/internal/tui"
)

var (
	// Global flags
	verbose    bool
	configPath string
	mapPath    string
	country    string

	// Set up in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "euromap",
	Short: "Political map of Europe in the terminal",
	Long: `euromap draws Europe in the terminal. Pan with the mouse, zoom with the
wheel, click a country to focus it and press enter for its page: stock
index, market signal, latest headlines and political notes.

Run "euromap serve" to provide the stock endpoint the country page reads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if mapPath != "" {
			cfg.Map.Path = mapPath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runMap,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stock quotes over HTTP",
	Long: `Serves GET /api/country/{code}/stock from the local quote database, in
the format the country page expects. Load quotes with "euromap stock import".`,
	RunE: runServe,
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Manage the stock quote database",
}

var stockImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a stock cache JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockImport,
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List countries with a stored quote",
	RunE:  runStockList,
}

var reportCmd = &cobra.Command{
	Use:   "report CODE...",
	Short: "Print country pages without the interactive map",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReport,
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the countries on the map",
	RunE:  runRegions,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "euromap.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&mapPath, "map", "m", "", "Map file (.svg or .geojson); built-in map when empty")
	rootCmd.Flags().StringVar(&country, "country", "", "Open this country's page on start")

	stockCmd.AddCommand(stockImportCmd, stockListCmd)
	rootCmd.AddCommand(serveCmd, stockCmd, reportCmd, regionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadData returns the map and country table named by the config.
func loadData() (*scene.Scene, *regioninfo.Provider, error) {
	s := scene.Default()
	if cfg.Map.Path != "" {
		var err error
		if s, err = scene.Load(cfg.Map.Path); err != nil {
			return nil, nil, err
		}
	}
	info := regioninfo.Default()
	if cfg.Map.Regions != "" {
		var err error
		if info, err = regioninfo.Load(cfg.Map.Regions); err != nil {
			return nil, nil, err
		}
	}
	return s, info, nil
}

func newFetcher(info *regioninfo.Provider) *detail.Fetcher {
	return &detail.Fetcher{
		Stock: stock.NewClient(cfg.Stock.BaseURL, cfg.GetStockTimeout(), logger.Named("stock")),
		News:  news.NewClient(cfg.News.BaseURL, cfg.GetNewsTimeout(), logger.Named("news")),
		Info:  info,
		Log:   logger.Named("detail"),
		Query: cfg.NewsQuery,
	}
}

func runMap(cmd *cobra.Command, args []string) error {
	s, info, err := loadData()
	if err != nil {
		return err
	}
	logger.Info("map loaded",
		zap.String("path", cfg.Map.Path),
		zap.Int("regions", s.Len()))

	var w *tui.MapWatcher
	if cfg.Map.Watch && cfg.Map.Path != "" {
		w, err = tui.NewMapWatcher(cfg.Map.Path, logger.Named("watch"))
		if err != nil {
			// the map still works without live reload
			logger.Warn("map watcher disabled", zap.Error(err))
			w = nil
		} else {
			logger.Info("watching map file", zap.String("path", w.Path()))
		}
	}

	m := tui.New(tui.Options{
		Scene:     s,
		MapPath:   cfg.Map.Path,
		Info:      info,
		Fetcher:   newFetcher(info),
		Viewport:  cfg.ViewportOptions(),
		ColorMode: cfg.ColorMode(),
		Country:   country,
		Watcher:   w,
		Log:       logger.Named("tui"),
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := stock.Open(cfg.Stock.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	err = store.Init(ctx)
	cancel()
	if err != nil {
		return err
	}

	srv := stock.NewServer(store, stock.ServerConfig{
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		AccessLog:    cfg.Server.AccessLog,
	}, logger.Named("server"))

	addr := cfg.ListenAddr()
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()
	logger.Info("stock server started", zap.String("addr", addr), zap.String("db", cfg.Stock.DBPath))
	fmt.Printf("Serving stock quotes on %s (Ctrl+C to stop)\n", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context) (*stock.Store, error) {
	store, err := stock.Open(cfg.Stock.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func runStockImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	logger.Info("stock import",
		zap.String("file", args[0]),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d quotes into %s\n", res.Imported, cfg.Stock.DBPath)
	for code, reason := range res.Skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", code, reason)
	}
	return nil
}

func runStockList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	codes, err := store.Codes(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(codes) == 0 {
		fmt.Fprintln(out, "No quotes stored.")
		return nil
	}
	for _, code := range codes {
		q, err := store.Get(cmd.Context(), code)
		if err != nil {
			fmt.Fprintf(out, "%-4s error: %v\n", strings.ToUpper(code), err)
			continue
		}
		fmt.Fprintf(out, "%-4s %-12s %s\n", strings.ToUpper(code), q.Index, detail.FormatValue(q.Value))
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	_, info, err := loadData()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pages, err := newFetcher(info).Snapshot(ctx, args, cfg.Report.Concurrency)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("report cancelled")
		}
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range pages {
		doc, err := r.Render(p.Markdown())
		if err != nil {
			// plain markdown is still readable
			doc = p.Markdown()
		}
		fmt.Fprint(out, doc)
	}
	return nil
}

func runRegions(cmd *cobra.Command, args []string) error {
	s, info, err := loadData()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, code := range s.Codes() {
		_, known := info.Lookup(code)
		mark := ""
		if !known {
			mark = " (no political data)"
		}
		fmt.Fprintf(out, "%-4s %s%s\n", strings.ToUpper(code), info.DisplayName(code), mark)
	}
	return nil
}
