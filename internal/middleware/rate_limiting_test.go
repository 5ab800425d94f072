package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
)

type fakeRateLimiter struct {
	allowed int
	err     error
	keys    []string
	limits  []redis_rate.Limit
}

func (l *fakeRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	if l.err != nil {
		return nil, l.err
	}
	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if l.allowed > 0 {
		l.allowed--
		res.Allowed = 1
		return res, nil
	}
	res.RetryAfter = 1500 * time.Millisecond
	return res, nil
}

func TestRateLimit(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &fakeRateLimiter{allowed: 2}

	called := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(limiter, "load-more", 2, metricsManager)(next)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/posts", nil)
		req.RemoteAddr = "83.12.53.65:2145"
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.RemoteAddr = "83.12.53.65:2145"
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.Equal(t, 2, called)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))

	require.Len(t, limiter.keys, 3)
	assert.Equal(t, "load-more::83.12.53.65", limiter.keys[0])
	assert.Equal(t, redis_rate.PerMinute(2), limiter.limits[0])
}

func TestRateLimit_LimiterError(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &fakeRateLimiter{err: errors.New("redis down")}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := RateLimit(limiter, "load-more", 10, metricsManager)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}

func TestRateLimit_UnknownClient(t *testing.T) {
	limiter := &fakeRateLimiter{allowed: 1}
	handler := RateLimit(limiter, "load-more", 10, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.RemoteAddr = "garbage"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "load-more", limiter.keys[0])
}
