package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
)

func TestRequestMetrics(t *testing.T) {
	metricsManager, reg := metrics.NewTestManagerAndRegistry()

	r := mux.NewRouter()
	r.HandleFunc("/post/{slug}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["slug"] == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}).Name("post")
	r.Use(RequestMetrics(metricsManager))

	for _, path := range []string{"/post/a", "/post/b", "/post/missing"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metricsManager.CounterRequests.With(prometheus.Labels{
		"method": "GET",
		"status": "200",
	})))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRequests.With(prometheus.Labels{
		"method": "GET",
		"status": "404",
	})))

	families, err := reg.Gather()
	require.NoError(t, err)

	routes := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "frontend_test_server_request_duration_seconds" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "route" {
					routes[label.GetValue()] = true
				}
			}
		}
	}
	assert.Equal(t, map[string]bool{"post": true}, routes)
}

func TestDrainAndCloseRequest(t *testing.T) {
	body := &trackingBody{}
	req := httptest.NewRequest("POST", "/", body)
	req.Body = body

	called := false
	DrainAndCloseRequest()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.True(t, body.closed)
}

type trackingBody struct {
	closed bool
}

func (b *trackingBody) Read([]byte) (int, error) {
	return 0, http.ErrBodyNotAllowed
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
