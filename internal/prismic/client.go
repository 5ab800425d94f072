package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/internal/telemetry/tracing"
)

// example API calls
// https://spacetraveling.cdn.prismic.io/api/v2
// https://spacetraveling.cdn.prismic.io/api/v2/documents/search?ref=YHx...&q=[[at(document.type,"posts")]]&pageSize=1

const (
	MaxPageSize        = 100
	DefaultCacheExpire = 30 * time.Minute
	masterRefExpire    = 30 * time.Second
	masterRefCacheKey  = "master-ref"
	accessTokenParam   = "access_token"
	maxErrorBodyLength = 256
)

type Client struct {
	endpoint       *url.URL
	accessToken    string
	httpClient     *http.Client
	cache          *Cache
	cacheExpire    time.Duration
	retryConfig    RetryConfig
	metricsManager *metrics.Manager
}

type NewClientParams struct {
	// Endpoint is the repository API root, e.g. https://repo.cdn.prismic.io/api/v2
	Endpoint       string
	AccessToken    string
	HttpClient     *http.Client
	Cache          *Cache
	CacheExpire    time.Duration
	RetryConfig    *RetryConfig
	MetricsManager *metrics.Manager
}

func NewClient(params NewClientParams) (*Client, error) {
	if params.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	endpoint, err := url.Parse(strings.TrimSuffix(params.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme: [%s]", endpoint.Scheme)
	}

	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	cacheExpire := params.CacheExpire
	if cacheExpire <= 0 {
		cacheExpire = DefaultCacheExpire
	}

	retryConfig := DefaultRetryConfig()
	if params.RetryConfig != nil {
		retryConfig = *params.RetryConfig
	}

	return &Client{
		endpoint:       endpoint,
		accessToken:    params.AccessToken,
		httpClient:     httpClient,
		cache:          params.Cache,
		cacheExpire:    cacheExpire,
		retryConfig:    retryConfig,
		metricsManager: params.MetricsManager,
	}, nil
}

// GetByType returns one listing page of documents of the given type.
func (c *Client) GetByType(ctx context.Context, docType string, opts QueryOptions) (resp *SearchResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "prismic.getByType", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("doc.type", docType))
	span.SetAttributes(attribute.Int("page.size", opts.PageSize))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err := opts.validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`[[at(document.type,"%s")]]`, docType)
	searchURL, err := c.searchURL(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	return c.search(ctx, searchURL)
}

// GetByUID returns the document of the given type with the given uid,
// or ErrNotFound.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (doc *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "prismic.getByUID", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("doc.type", docType))
	span.SetAttributes(attribute.String("doc.uid", uid))
	defer span.End()
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if uid == "" {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`[[at(my.%s.uid,"%s")]]`, docType, strings.ReplaceAll(uid, `"`, `\"`))
	searchURL, err := c.searchURL(ctx, query, QueryOptions{PageSize: 1})
	if err != nil {
		return nil, err
	}

	resp, err := c.search(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}

	return &resp.Results[0], nil
}

// FetchPage follows a next_page cursor from a previous listing response.
// Only cursors pointing at the configured repository are followed.
func (c *Client) FetchPage(ctx context.Context, nextPage string) (resp *SearchResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "prismic.fetchPage", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	cursor, err := url.Parse(nextPage)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrForeignCursor, err)
	}
	if cursor.Scheme != c.endpoint.Scheme || cursor.Host != c.endpoint.Host ||
		!strings.HasPrefix(cursor.Path, c.endpoint.Path) {
		return nil, fmt.Errorf("%w: [%s]", ErrForeignCursor, cursor.Host)
	}

	return c.search(ctx, cursor.String())
}

func (c *Client) searchURL(ctx context.Context, query string, opts QueryOptions) (string, error) {
	ref, err := c.masterRef(ctx)
	if err != nil {
		return "", fmt.Errorf("get master ref: %w", err)
	}

	values := url.Values{}
	values.Set("ref", ref)
	values.Set("q", query)
	if opts.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		values.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Orderings != "" {
		values.Set("orderings", opts.Orderings)
	}
	if opts.Lang != "" {
		values.Set("lang", opts.Lang)
	}

	return c.endpoint.String() + "/documents/search?" + values.Encode(), nil
}

func (c *Client) search(ctx context.Context, searchURL string) (*SearchResponse, error) {
	respBytes, err := c.cachedGet(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	searchResp := &SearchResponse{}
	if err := json.Unmarshal(respBytes, searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	// cursors leave this client, so they never carry the access token
	if searchResp.NextPage != nil {
		next := stripAccessToken(*searchResp.NextPage)
		searchResp.NextPage = &next
	}
	if searchResp.PrevPage != nil {
		prev := stripAccessToken(*searchResp.PrevPage)
		searchResp.PrevPage = &prev
	}

	return searchResp, nil
}

func (c *Client) masterRef(ctx context.Context) (string, error) {
	if ref, ok := c.cache.Get(ctx, masterRefCacheKey); ok {
		return string(ref), nil
	}

	respBytes, err := c.get(ctx, c.endpoint.String())
	if err != nil {
		return "", err
	}

	info := &apiInfo{}
	if err := json.Unmarshal(respBytes, info); err != nil {
		return "", fmt.Errorf("unmarshal api info: %w", err)
	}

	ref, err := info.masterRef()
	if err != nil {
		return "", err
	}

	c.cache.Set(ctx, masterRefCacheKey, []byte(ref), masterRefExpire)
	log.Debugf("prismic: master ref set to [%s]", ref)

	return ref, nil
}

func (c *Client) cachedGet(ctx context.Context, reqURL string) ([]byte, error) {
	cacheKey := stripAccessToken(reqURL)
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		c.countRequest("cache")
		return cached, nil
	}

	respBytes, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, cacheKey, respBytes, c.cacheExpire)

	return respBytes, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	reqURL, err := c.withAccessToken(reqURL)
	if err != nil {
		return nil, err
	}

	defer func(begin time.Time) {
		if c.metricsManager != nil {
			c.metricsManager.HistCMSRequestDuration.Observe(time.Since(begin).Seconds())
		}
	}(time.Now())

	log.Debugf("calling prismic api: %s", stripAccessToken(reqURL))

	var respBytes []byte
	err = retry(ctx, c.retryConfig, "get "+stripAccessToken(reqURL), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http client do: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response bytes: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBodyLength)}
			if apiErr.Temporary() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		respBytes = body
		return nil
	})
	if err != nil {
		c.countRequest("error")
		return nil, err
	}

	c.countRequest("api")
	return respBytes, nil
}

func (c *Client) countRequest(source string) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterCMSRequests.With(prometheus.Labels{"source": source}).Inc()
}

func (c *Client) withAccessToken(reqURL string) (string, error) {
	if c.accessToken == "" {
		return reqURL, nil
	}
	u, err := url.Parse(reqURL)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	q := u.Query()
	q.Set(accessTokenParam, c.accessToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func stripAccessToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has(accessTokenParam) {
		return rawURL
	}
	q.Del(accessTokenParam)
	u.RawQuery = q.Encode()
	return u.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
