package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/database"
	securelog "github.com/nao1215/recipescout/internal/log"
	"github.com/nao1215/recipescout/internal/pipeline"
)

// crawlRequestsPerSecond caps discovery fetches per host. Recipe fetches
// use the configured politeness delay instead.
const crawlRequestsPerSecond = 4

// flagString returns a string flag of the command or of the root command.
// Commands executed on their own in tests have no root flags.
func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// flagBool is flagString for boolean flags.
func flagBool(cmd *cobra.Command, name string) bool {
	return flagString(cmd, name) == "true"
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return flagBool(cmd, "verbose")
}

// loadConfig creates a Config from the global flags and the configuration file.
// Command-specific flags are applied by the caller afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.JSONLog = flagBool(cmd, "log-json")
	cfg.ConfigFilePath = flagString(cmd, "config")
	cfg.DBDir = flagString(cmd, "db-dir")

	// An explicit path must exist; the implicit search may find nothing.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("configuration error: failed to load %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration error: %w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// setupLogger creates the structured logger for a command and makes it the default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	if cfg.JSONLog {
		logger = securelog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	} else {
		logger = securelog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openDB opens the recipe database. Read-only commands do not create it.
func openDB(cfg *config.Config, create bool) (*database.RecipeDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	db, err := database.Open(cfg.DBDirOrDefault(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe database: %w", err)
	}
	return db, nil
}

// newFetcher creates the HTTP fetcher for a site configuration.
// A bad proxy URL is a configuration error.
func newFetcher(cfg *config.Config, sc config.SiteConfig, logger *slog.Logger) (*crawler.HTTPFetcher, error) {
	timeout := cfg.Timeout
	if sc.Timeout > 0 {
		timeout = sc.Timeout
	}
	client, err := crawler.NewHTTPClient(crawler.ClientOptions{
		Timeout:  timeout,
		ProxyURL: cfg.ProxyURL,
		Cookie:   sc.Cookie,
		Headers:  sc.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	userAgent := cfg.UserAgent
	if sc.UserAgent != "" {
		userAgent = sc.UserAgent
	}
	return crawler.NewHTTPFetcher(client,
		crawler.WithUserAgents(userAgent),
		crawler.WithFetcherMaxBodySize(cfg.MaxBodySize),
		crawler.WithFetcherLogger(logger),
	), nil
}

// newRenderer returns the headless browser renderer, or nil when the
// browser is disabled or no browser executable is installed.
func newRenderer(cfg *config.Config, sessions int, logger *slog.Logger) crawler.Renderer {
	if !cfg.UseBrowser {
		return nil
	}
	opts := crawler.DefaultRenderOptions()
	opts.Timeout = cfg.RenderTimeout
	opts.UserAgent = cfg.UserAgent
	opts.MaxBodySize = cfg.MaxBodySize
	opts.ConcurrentSessions = max(sessions, 1)

	r := crawler.NewChromedpRenderer(opts, logger)
	if !r.Available() {
		logger.Warn("no headless browser found; the rendered strategy is disabled")
		return nil
	}
	return r
}

// classifiers builds the URL and content classifiers with the configured
// thresholds and the built-in site hooks.
func classifiers(cfg *config.Config, hooks *pipeline.HookRegistry) (*classify.URLClassifier, *classify.ContentClassifier) {
	urls := classify.NewURLClassifier(classify.WithURLThresholds(cfg.Thresholds))
	opts := append([]classify.ContentOption{classify.WithContentThresholds(cfg.Thresholds)}, hooks.ContentOptions()...)
	return urls, classify.NewContentClassifier(opts...)
}

// newChainFactory wires the strategy collaborators shared by every site.
func newChainFactory(cfg *config.Config, fetcher *crawler.HTTPFetcher, renderer crawler.Renderer, logger *slog.Logger) *pipeline.ChainFactory {
	hooks := pipeline.DefaultHooks()
	urls, content := classifiers(cfg, hooks)

	return &pipeline.ChainFactory{
		Fetcher:    fetcher,
		Renderer:   renderer,
		KnownURLs:  cfg.SiteConfigs.KnownURLTable(),
		UseBrowser: cfg.UseBrowser && renderer != nil,
		Options: []pipeline.StrategyOption{
			pipeline.WithURLClassifier(urls),
			pipeline.WithContentClassifier(content),
			pipeline.WithHooks(hooks),
			pipeline.WithCategoryPaths(cfg.SiteConfigs.CategoryPathList()),
			pipeline.WithProbeLimit(config.DefaultProbeLimit),
			pipeline.WithRobots(crawler.NewRobotsAgent(fetcher.Client(), cfg.UserAgent, cfg.RespectRobots)),
			pipeline.WithLimiter(crawler.NewLimiter(0, 0, crawler.WithRate(crawlRequestsPerSecond, time.Second))),
			pipeline.WithStrategyLogger(logger),
		},
		Logger: logger,
	}
}

// newVerifier creates the verification pass sharing the chain's classifier settings.
func newVerifier(cfg *config.Config, fetcher *crawler.HTTPFetcher, logger *slog.Logger) *pipeline.Verifier {
	urls, content := classifiers(cfg, pipeline.DefaultHooks())
	return pipeline.NewVerifier(fetcher, content,
		pipeline.WithVerifierURLClassifier(urls),
		pipeline.WithVerifierLimiter(crawler.NewLimiter(cfg.DelayMin, cfg.DelayMax)),
		pipeline.WithVerifierLogger(logger),
	)
}
