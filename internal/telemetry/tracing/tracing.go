package tracing

import (
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var GlobalTracer = otel.Tracer("spacetraveling")

// HoneycombSetup configures the OpenTelemetry SDK to export to Honeycomb.
// When disabled, the global no-op tracer provider stays in place. The
// returned function flushes and shuts the exporters down.
func HoneycombSetup(enabled bool, serviceName string, redisClient *redis.Client) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	bsp := honeycomb.NewBaggageSpanProcessor()
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
		otelconfig.WithSpanProcessor(bsp),
	)
	if err != nil {
		return nil, err
	}

	if redisClient != nil {
		redisClient.AddHook(redisotel.NewTracingHook())
	}

	log.Debugf("honeycomb tracing set up for [%s]", serviceName)

	return otelShutdown, nil
}
