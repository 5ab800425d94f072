package posts

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/spacetraveling/internal/prismic"
)

func summaryFromDocument(doc *prismic.Document) (PostSummary, error) {
	var data SummaryData
	if err := doc.DecodeData(&data); err != nil {
		return PostSummary{}, err
	}

	return PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: publicationDate(doc.ID, doc.FirstPublicationDate),
		Data:                 data,
	}, nil
}

func postFromDocument(doc *prismic.Document) (*Post, error) {
	var data PostData
	if err := doc.DecodeData(&data); err != nil {
		return nil, err
	}

	return &Post{
		UID:                  doc.UID,
		FirstPublicationDate: publicationDate(doc.ID, doc.FirstPublicationDate),
		Data:                 data,
	}, nil
}

func pageFromResponse(resp *prismic.SearchResponse) (Pagination, error) {
	page := Pagination{
		Results:  make([]PostSummary, 0, len(resp.Results)),
		NextPage: resp.Next(),
	}

	for i := range resp.Results {
		summary, err := summaryFromDocument(&resp.Results[i])
		if err != nil {
			return Pagination{}, fmt.Errorf("map listing document: %w", err)
		}
		page.Results = append(page.Results, summary)
	}

	return page, nil
}

// publicationDate is nil for unpublished documents, and for dates that
// cannot be parsed.
func publicationDate(docID string, raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}

	t, err := prismic.ParseDate(*raw)
	if err != nil {
		log.Errorf("document %s: %s", docID, err)
		return nil
	}

	return &t
}
