package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/testinternals"
)

func (s *IntegrationTestSuite) get(ctx context.Context, path string) (int, string) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.serverEndpoint+path, nil)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, string(body)
}

func (s *IntegrationTestSuite) TestHome() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	status, body := s.get(ctx, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Como utilizar Hooks")
	assert.Contains(t, body, "Carregar mais posts")

	status, body = s.get(ctx, "/?pages=3")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Criando um app CRA do zero")
	assert.Contains(t, body, "Rascunho")
	assert.NotContains(t, body, "Carregar mais posts")
}

func (s *IntegrationTestSuite) TestPost_SharedCache() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	status, body := s.get(ctx, "/post/criando-um-app-cra-do-zero")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>Criando um app CRA do zero</h1>")
	assert.Contains(t, body, "1 min")

	// responses are shared through redis
	keys, err := s.redisClient.Keys(ctx, "prismic::*").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, keys)

	status, _ = s.get(ctx, "/post/nao-existe")
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestLoadMore_RateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	cursor := s.firstPageCursor(ctx)

	for i := 0; i < loadMoreLimitPerMin; i++ {
		status, body := s.get(ctx, "/api/posts?next_page="+url.QueryEscape(cursor))
		require.Equal(t, http.StatusOK, status, fmt.Sprintf("request %d", i))

		var page posts.Pagination
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, "criando-um-app-cra-do-zero", page.Results[0].UID)
	}

	status, _ := s.get(ctx, "/api/posts?next_page="+url.QueryEscape(cursor))
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func (s *IntegrationTestSuite) firstPageCursor(ctx context.Context) string {
	values := url.Values{}
	values.Set("ref", testinternals.MasterRef)
	values.Set("q", `[[at(document.type,"posts")]]`)
	values.Set("pageSize", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", s.fakePrismic.Endpoint()+"/documents/search?"+values.Encode(), nil)
	require.NoError(s.T(), err)

	resp, err := s.fakePrismic.Server.Client().Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var searchResp struct {
		NextPage *string `json:"next_page"`
	}
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&searchResp))
	require.NotNil(s.T(), searchResp.NextPage)

	return *searchResp.NextPage
}
