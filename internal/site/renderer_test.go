package site

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/richtext"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		date     *time.Time
		expected string
	}{
		{date: timePtr(time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)), expected: "15 mar 2021"},
		{date: timePtr(time.Date(2021, time.January, 1, 12, 0, 0, 0, time.UTC)), expected: "01 jan 2021"},
		{date: timePtr(time.Date(2020, time.December, 31, 23, 59, 0, 0, time.UTC)), expected: "31 dez 2020"},
		{date: timePtr(time.Date(2021, time.February, 3, 0, 30, 0, 0, time.FixedZone("+03", 3*3600))), expected: "02 fev 2021"},
		{date: nil, expected: ""},
		{date: &time.Time{}, expected: ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, formatDate(tc.date))
	}
}

func TestNewPostView(t *testing.T) {
	published := time.Date(2021, time.March, 25, 19, 25, 28, 0, time.UTC)
	post := &posts.Post{
		UID:                  "como-utilizar-hooks",
		FirstPublicationDate: &published,
		Data: posts.PostData{
			Title:  "Como utilizar Hooks",
			Author: "Joseph Oliveira",
			Content: []posts.Content{
				{Heading: heading(""), Body: richtext.RichText{{Type: richtext.TypeParagraph, Text: "<script>alert(1)</script>"}}},
				{Heading: heading("Fim"), Body: nil},
			},
		},
	}

	view := NewPostView(post)
	assert.Equal(t, "Como utilizar Hooks", view.Title)
	assert.Equal(t, &published, view.PublishedAt)
	assert.Equal(t, 1, view.ReadingTime)
	require.Len(t, view.Sections, 2)
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>", string(view.Sections[0].Body))
	assert.Equal(t, "Fim", view.Sections[1].Heading)
	assert.Empty(t, view.Sections[1].Body)
}

func TestRenderer_Post_EmptyHeadingOmitted(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, renderer.Post(buf, PostView{
		Title:    "Sem título de seção",
		Sections: []SectionView{{Heading: "", Body: "<p>corpo</p>"}},
	}))

	html := buf.String()
	assert.NotContains(t, html, "<h2>")
	assert.Contains(t, html, "<p>corpo</p>")
	assert.Contains(t, html, "0 min")
	// no banner url, no banner img
	assert.NotContains(t, html, `class="banner"`)
}

func TestRenderer_Home_NoMorePages(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, renderer.Home(buf, HomeView{
		Posts: []posts.PostSummary{{UID: "a", Data: posts.SummaryData{Title: "A"}}},
	}))

	html := buf.String()
	assert.Contains(t, html, `href="/post/a"`)
	assert.NotContains(t, html, "Carregar mais posts")
	assert.NotContains(t, html, "Tentar novamente")
}

func TestRenderer_Error(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, renderer.Error(buf, ErrorView{Title: "Ops", Message: "<b>nada</b>"}))

	html := buf.String()
	assert.Contains(t, html, "<title>Ops | Space Traveling</title>")
	assert.Contains(t, html, "&lt;b&gt;nada&lt;/b&gt;")
}

func heading(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
