package prismic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrForeignCursor  = errors.New("next page cursor does not point to the content repository")
	ErrNoMasterRef    = errors.New("content repository has no master ref")
	ErrEmptyEndpoint  = errors.New("content repository endpoint empty")
	ErrInvalidOptions = errors.New("invalid query options")
)

// APIError is returned when the content API answers with a non 200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content api responded with %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether repeating the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiInfo struct {
	Refs []Ref `json:"refs"`
}

func (i *apiInfo) masterRef() (string, error) {
	for _, r := range i.Refs {
		if r.IsMasterRef && r.Ref != "" {
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Document is a single CMS document; Data is left raw, each document type
// decodes it into its own shape.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Lang                 string          `json:"lang,omitempty"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document data block into v.
func (d *Document) DecodeData(v interface{}) error {
	if len(d.Data) == 0 {
		return fmt.Errorf("document %s: data empty", d.ID)
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("document %s: unmarshal data: %w", d.ID, err)
	}
	return nil
}

type SearchResponse struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the next page cursor, or an empty string at the end of
// the listing.
func (r *SearchResponse) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

type QueryOptions struct {
	PageSize  int
	Page      int
	Orderings string
	Lang      string
}

func (o QueryOptions) validate() error {
	if o.PageSize < 0 || o.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size %d out of [0, %d]", ErrInvalidOptions, o.PageSize, MaxPageSize)
	}
	if o.Page < 0 {
		return fmt.Errorf("%w: page %d", ErrInvalidOptions, o.Page)
	}
	return nil
}

var publicationDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// ParseDate parses the publication timestamps used by the content API,
// e.g. 2021-03-25T19:25:28+0000.
func ParseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range publicationDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse publication date %q: %w", value, lastErr)
}
