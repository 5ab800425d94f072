package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/spacetraveling/internal/builder"
	"github.com/2beens/spacetraveling/internal/config"
	"github.com/2beens/spacetraveling/internal/logging"
	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/prismic"
	"github.com/2beens/spacetraveling/internal/site"
	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/internal/telemetry/tracing"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	outDir := flag.String("out", "", "output dir, overrides out_dir from the config")
	archivePath := flag.String("archive", "", "if set, the built site is also archived to this tar.gz file")
	timeout := flag.Duration("timeout", 10*time.Minute, "build timeout")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "site-builder",
	})
	defer sentry.Flush(5 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, *timeout)
	defer timeoutCancel()

	if err := run(ctx, cfg, *archivePath); err != nil {
		for _, e := range multierr.Errors(err) {
			log.Errorf("build: %s", e)
		}
		// deferred calls do not run after os.Exit
		sentry.Flush(5 * time.Second)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, archivePath string) error {
	otelShutdown, err := tracing.HoneycombSetup(os.Getenv("HONEYCOMB_ENABLED") == "true", "spacetraveling-builder", nil)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer otelShutdown()

	metricsManager := metrics.NewManager("frontend", "builder", metrics.SetupPrometheus())

	prismicClient, err := prismic.NewClient(prismic.NewClientParams{
		Endpoint:    cfg.PrismicEndpoint,
		AccessToken: os.Getenv("PRISMIC_ACCESS_TOKEN"),
		HttpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		// one build walks every document once, a local cache is enough
		Cache:          prismic.NewCache(cfg.CacheSizeMB, nil),
		CacheExpire:    cfg.Revalidate(),
		MetricsManager: metricsManager,
	})
	if err != nil {
		return fmt.Errorf("new prismic client: %w", err)
	}

	renderer, err := site.NewRenderer()
	if err != nil {
		return fmt.Errorf("new renderer: %w", err)
	}

	siteBuilder := builder.NewBuilder(
		posts.NewService(prismicClient, cfg.PageSize, metricsManager),
		renderer,
		cfg.MaxPages,
		metricsManager,
	)

	start := time.Now()
	result, err := siteBuilder.Build(ctx, cfg.OutDir)
	if err != nil {
		return err
	}
	log.Infof("build done in %s: %d listing pages, %d posts", time.Since(start).Round(time.Millisecond), result.ListingPages, result.Posts)

	if archivePath != "" {
		if err := builder.Archive(cfg.OutDir, archivePath); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		log.Infof("site archived to [%s]", archivePath)
	}

	return nil
}
