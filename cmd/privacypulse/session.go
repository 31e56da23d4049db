package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/api"
	"github.com/nao1215/privacypulse/internal/config"
	"github.com/nao1215/privacypulse/internal/crawler"
	"github.com/nao1215/privacypulse/internal/database"
	"github.com/nao1215/privacypulse/internal/detector"
	plog "github.com/nao1215/privacypulse/internal/log"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/pipeline"
	"github.com/nao1215/privacypulse/internal/stream"
	"github.com/nao1215/privacypulse/internal/tor"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure stderr logger for the verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	return plog.NewSecureLogger(os.Stderr, verbose)
}

// buildConfig assembles a Config from defaults, the configuration file, the
// environment and the global flags. Later sources win.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named file must exist; otherwise a missing file just
	// means defaults.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if apiBase, err := flags.GetString("api"); err != nil {
		return nil, err
	} else if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if proxyAddr, err := flags.GetString("proxy"); err != nil {
		return nil, err
	} else if proxyAddr != "" {
		cfg.ProxyAddress = proxyAddr
	}
	if flags.Changed("tor") {
		if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	return cfg, nil
}

// compileOverrides returns the built-in policy overrides followed by the
// configured ones.
func compileOverrides(cfg *config.Config) ([]crawler.Override, error) {
	overrides := crawler.DefaultOverrides()
	for _, o := range cfg.PolicyOverrides {
		compiled, err := crawler.NewOverride(o.Pattern, o.URL)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, compiled)
	}
	return overrides, nil
}

// session holds the network stack shared by the pipelines of one command.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *http.Client
	api       *api.Client
	fetcher   *crawler.Fetcher
	detector  *detector.Detector
	overrides []crawler.Override
	tor       *tor.EmbeddedTor
}

// newSession builds the HTTP transport (direct, SOCKS5 or embedded Tor),
// the backend client, the page fetcher and the detector. Progress notes go
// to status.
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*session, error) {
	overrides, err := compileOverrides(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, overrides: overrides}

	proxy, err := s.setupProxy(ctx, status)
	if err != nil {
		return nil, err
	}

	s.client = tor.NewHTTPClient(tor.ClientOptions{
		Timeout: cfg.Timeout,
		Proxy:   proxy,
		Headers: cfg,
	})

	s.api, err = api.New(cfg.APIBase, s.client,
		api.WithUserAgent(cfg.UserAgent),
		api.WithParser(stream.New(stream.WithLogger(logger))),
		api.WithLogger(logger),
	)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.fetcher = crawler.NewFetcher(s.client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRespectRobots(cfg.RespectRobots),
		crawler.WithFetcherLogger(logger),
	)
	s.detector = detector.New(
		detector.WithAnalyticsKeywords(cfg.AnalyticsKeywords...),
		detector.WithLogger(logger),
	)

	logger.Debug("session ready",
		"api", s.api.BaseURL(),
		"proxy", cfg.ProxyAddress,
		"tor", cfg.UseTor,
		"respectRobots", cfg.RespectRobots,
	)
	return s, nil
}

// setupProxy returns the SOCKS5 proxy to route through, or nil for direct
// connections. It starts the embedded Tor daemon when configured.
func (s *session) setupProxy(ctx context.Context, status io.Writer) (*tor.Proxy, error) {
	switch {
	case s.cfg.ProxyAddress != "":
		proxy, err := tor.NewProxy(s.cfg.ProxyAddress)
		if err != nil {
			return nil, err
		}
		if st := proxy.Check(ctx); st != tor.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s): %w",
				st, s.cfg.ProxyAddress, st.Err())
		}
		s.logger.Info("proxy connection verified", "address", s.cfg.ProxyAddress)
		return proxy, nil

	case s.cfg.UseTor:
		fmt.Fprintln(status, "Starting embedded Tor daemon...")
		fmt.Fprintf(status, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		s.tor = tor.NewEmbeddedTor(tor.WithStartupTimeout(s.cfg.TorStartupTimeout))
		if err := s.tor.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		proxy, err := s.tor.Proxy()
		if err != nil {
			s.Close()
			return nil, err
		}
		if st := proxy.Check(ctx); st != tor.ProxyStatusOK {
			s.Close()
			return nil, fmt.Errorf("embedded Tor proxy check failed: %s: %w", st, st.Err())
		}
		s.logger.Info("embedded Tor daemon started",
			"socksAddr", s.tor.SocksAddr(),
			"controlAddr", s.tor.ControlAddr(),
		)
		fmt.Fprintf(status, "SOCKS proxy: %s\n\n", s.tor.SocksAddr())
		return proxy, nil

	default:
		return nil, nil
	}
}

// Close stops the embedded Tor daemon, if any.
func (s *session) Close() {
	if s.tor == nil {
		return
	}
	s.logger.Info("stopping embedded Tor daemon")
	if err := s.tor.Stop(); err != nil {
		s.logger.Error("failed to stop embedded Tor", "error", err)
	}
}

// mode returns the configured scan mode.
func (s *session) mode() model.ScanMode {
	if s.cfg.OneShot {
		return model.ModeOneShot
	}
	return model.ModeStream
}

// newPipeline builds a scan pipeline. obs receives streamed publications
// and may be nil.
func (s *session) newPipeline(obs stream.Observer) *pipeline.Pipeline {
	return pipeline.NewScanPipeline(pipeline.Options{
		Fetcher:   s.fetcher,
		Scanner:   s.api,
		Detector:  s.detector,
		Observer:  obs,
		Overrides: s.overrides,
		Resolver:  s.cfg,
		Logger:    s.logger,
	})
}

// openDB opens the scan database, or returns nil when persistence is
// disabled.
func openDB(cfg *config.Config) (*database.DB, error) {
	if strings.TrimSpace(cfg.DBDir) == "" {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
