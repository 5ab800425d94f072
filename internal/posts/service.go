package posts

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/spacetraveling/internal/prismic"
	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/internal/telemetry/tracing"
)

const (
	DocumentType    = "posts"
	DefaultPageSize = 1
)

type Service struct {
	cms            ContentAPI
	pageSize       int
	metricsManager *metrics.Manager
}

func NewService(cms ContentAPI, pageSize int, metricsManager *metrics.Manager) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{
		cms:            cms,
		pageSize:       pageSize,
		metricsManager: metricsManager,
	}
}

// FirstPage fetches the first listing page.
func (s *Service) FirstPage(ctx context.Context) (Pagination, error) {
	resp, err := s.cms.GetByType(ctx, DocumentType, prismic.QueryOptions{PageSize: s.pageSize})
	if err != nil {
		return Pagination{}, fmt.Errorf("get posts: %w", err)
	}
	return pageFromResponse(resp)
}

// Home returns the listing with the given number of pages loaded. When
// following a cursor fails, the pages loaded so far are returned together
// with a *LoadMoreError.
func (s *Service) Home(ctx context.Context, pages int) (pagination Pagination, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsService.home")
	span.SetAttributes(attribute.Int("pages", pages))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if pages < 1 {
		pages = 1
	}

	pagination, err = s.FirstPage(ctx)
	if err != nil {
		return Pagination{}, err
	}

	for loaded := 1; loaded < pages && pagination.HasMore(); loaded++ {
		pagination, err = s.LoadMore(ctx, pagination)
		if err != nil {
			return pagination, err
		}
	}

	return pagination, nil
}

// LoadMore fetches the page behind current.NextPage, exactly once, and
// appends it. On failure current is returned as is, with the error.
func (s *Service) LoadMore(ctx context.Context, current Pagination) (Pagination, error) {
	if !current.HasMore() {
		return current, ErrNoMorePages
	}

	resp, err := s.cms.FetchPage(ctx, current.NextPage)
	if err == nil {
		var page Pagination
		page, err = pageFromResponse(resp)
		if err == nil {
			return Accumulate(current, page), nil
		}
	}

	// a rejected cursor is a bad request, not an upstream failure
	if errors.Is(err, prismic.ErrForeignCursor) {
		log.Warnf("load more posts: %s", err)
		return current, &LoadMoreError{Cursor: current.NextPage, Err: err}
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterLoadMoreFailures.Inc()
	}
	log.Errorf("load more posts from [%s]: %s", current.NextPage, err)

	return current, &LoadMoreError{Cursor: current.NextPage, Err: err}
}

// Post returns the post with the given uid, or ErrPostNotFound.
func (s *Service) Post(ctx context.Context, uid string) (*Post, error) {
	doc, err := s.cms.GetByUID(ctx, DocumentType, uid)
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", uid, err)
	}

	return postFromDocument(doc)
}

// AllSlugs walks the whole listing, using the largest page size the API
// allows, and returns the uid of every post.
func (s *Service) AllSlugs(ctx context.Context) ([]string, error) {
	resp, err := s.cms.GetByType(ctx, DocumentType, prismic.QueryOptions{PageSize: prismic.MaxPageSize})
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}

	listing, err := pageFromResponse(resp)
	if err != nil {
		return nil, err
	}

	for listing.HasMore() {
		listing, err = s.LoadMore(ctx, listing)
		if err != nil {
			return nil, err
		}
	}

	slugs := make([]string, 0, len(listing.Results))
	for _, p := range listing.Results {
		if p.UID == "" {
			continue
		}
		slugs = append(slugs, p.UID)
	}

	return slugs, nil
}
