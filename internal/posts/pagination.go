package posts

// Accumulate appends a freshly fetched page to the current listing state
// and takes over the page cursor. current is left untouched; duplicates
// are kept as the content API returned them.
func Accumulate(current, page Pagination) Pagination {
	results := make([]PostSummary, 0, len(current.Results)+len(page.Results))
	results = append(results, current.Results...)
	results = append(results, page.Results...)

	return Pagination{
		Results:  results,
		NextPage: page.NextPage,
	}
}
