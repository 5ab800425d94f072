package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/pkg"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per minute per client IP on
// the wrapped routes.
func RateLimit(
	rateLimiter RequestRateLimiter,
	routerName string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := routerName
			if userIp, err := pkg.ReadUserIP(r); err == nil {
				key = fmt.Sprintf("%s::%s", routerName, userIp)
			} else {
				log.Debugf("rate limit [%s]: %s", routerName, err)
			}

			res, err := rateLimiter.Allow(r.Context(), key, redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				// the limiter being down must not take the route down with it
				log.Errorf("rate limit [%s]: %s", key, err)
				next.ServeHTTP(w, r)
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			http.Error(
				w,
				fmt.Sprintf("retry after %.0f seconds", math.Ceil(res.RetryAfter.Seconds())),
				http.StatusTooManyRequests,
			)
		})
	}
}
