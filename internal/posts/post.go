package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/spacetraveling/internal/richtext"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNoMorePages  = errors.New("no more pages")
)

// PostSummary is a listing entry.
type PostSummary struct {
	UID                  string      `json:"uid"`
	FirstPublicationDate *time.Time  `json:"first_publication_date"`
	Data                 SummaryData `json:"data"`
}

type SummaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

type Post struct {
	UID                  string     `json:"uid"`
	FirstPublicationDate *time.Time `json:"first_publication_date"`
	Data                 PostData   `json:"data"`
}

type PostData struct {
	Title   string    `json:"title"`
	Banner  Banner    `json:"banner"`
	Author  string    `json:"author"`
	Content []Content `json:"content"`
}

type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Content is one section of a post: an optional heading and a rich text body.
// Heading is nil when the section has no heading at all.
type Content struct {
	Heading *string           `json:"heading"`
	Body    richtext.RichText `json:"body"`
}

func (c Content) HeadingText() string {
	if c.Heading == nil {
		return ""
	}
	return *c.Heading
}

// Pagination is the listing state: posts loaded so far and the cursor to
// the next page. An empty NextPage means the listing is exhausted.
type Pagination struct {
	Results  []PostSummary
	NextPage string
}

func (p Pagination) HasMore() bool {
	return p.NextPage != ""
}

// paginationJson has the listing response shape: {"results": [], "next_page": null}
type paginationJson struct {
	Results  []PostSummary `json:"results"`
	NextPage *string       `json:"next_page"`
}

func (p Pagination) MarshalJSON() ([]byte, error) {
	pj := paginationJson{Results: p.Results}
	if pj.Results == nil {
		pj.Results = []PostSummary{}
	}
	if p.NextPage != "" {
		next := p.NextPage
		pj.NextPage = &next
	}
	return json.Marshal(pj)
}

func (p *Pagination) UnmarshalJSON(data []byte) error {
	var pj paginationJson
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	p.Results = pj.Results
	p.NextPage = ""
	if pj.NextPage != nil {
		p.NextPage = *pj.NextPage
	}
	return nil
}

// LoadMoreError reports a failed fetch of the next listing page. The
// pagination returned alongside it is still valid.
type LoadMoreError struct {
	Cursor string
	Err    error
}

func (e *LoadMoreError) Error() string {
	return fmt.Sprintf("load more posts: %s", e.Err)
}

func (e *LoadMoreError) Unwrap() error {
	return e.Err
}
