package posts

import (
	"context"

	"github.com/2beens/spacetraveling/internal/prismic"
)

//go:generate mockgen -source=content_api.go -destination=content_api_mock.go -package=posts

// ContentAPI is the part of the CMS client the posts service relies on.
type ContentAPI interface {
	GetByType(ctx context.Context, docType string, opts prismic.QueryOptions) (*prismic.SearchResponse, error)
	GetByUID(ctx context.Context, docType, uid string) (*prismic.Document, error)
	FetchPage(ctx context.Context, nextPage string) (*prismic.SearchResponse, error)
}
