package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/spacetraveling/internal/config"
	"github.com/2beens/spacetraveling/internal/middleware"
	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/prismic"
	"github.com/2beens/spacetraveling/internal/site"
	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/internal/telemetry/tracing"
)

const serviceName = "spacetraveling-frontend"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config       *config.Config
	postsService *posts.Service
	renderer     *site.Renderer
	redisClient  *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	PrismicAccessToken      string
	RedisPassword           string
	HoneycombTracingEnabled bool
	// PrismicHttpClient replaces the traced default client, used in tests
	PrismicHttpClient *http.Client
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("frontend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if params.Config.RedisEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	} else {
		log.Debugln("redis disabled, using process local cache only")
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, rdb)
	if err != nil {
		return nil, err
	}

	prismicHttpClient := params.PrismicHttpClient
	if prismicHttpClient == nil {
		prismicHttpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		}
	}

	prismicClient, err := prismic.NewClient(prismic.NewClientParams{
		Endpoint:       params.Config.PrismicEndpoint,
		AccessToken:    params.PrismicAccessToken,
		HttpClient:     prismicHttpClient,
		Cache:          prismic.NewCache(params.Config.CacheSizeMB, rdb),
		CacheExpire:    params.Config.Revalidate(),
		MetricsManager: metricsManager,
	})
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new prismic client: %w", err)
	}

	renderer, err := site.NewRenderer()
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	return &Server{
		config:       params.Config,
		postsService: posts.NewService(prismicClient, params.Config.PageSize, metricsManager),
		renderer:     renderer,
		redisClient:  rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("site-router"))

	// load more is rate limited only when limits can be shared through redis
	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	siteHandler := site.NewHandler(s.postsService, s.renderer, s.config.MaxPages, s.metricsManager)
	siteHandler.SetupRoutes(r, rateLimiter, s.config.LoadMoreRateLimitPerMin)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) metricsRouterSetup() *mux.Router {
	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	return metricsRouter
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("site service, listen and serve: %s", err)
		}
	}()

	if s.config.PrometheusMetricsPort != "" {
		metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
		s.metricsHttpServer = &http.Server{
			Addr:    metricsAddr,
			Handler: s.metricsRouterSetup(),
		}

		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
