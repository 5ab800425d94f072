package posts

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/2beens/spacetraveling/internal/richtext"
)

func paragraph(text string) richtext.RichText {
	return richtext.RichText{{Type: richtext.TypeParagraph, Text: text}}
}

func TestReadingTime(t *testing.T) {
	twoHundredWords := strings.TrimSpace(strings.Repeat("palavra ", 200))

	for caseName, tc := range map[string]struct {
		content  []Content
		expected int
	}{
		"nil content": {
			content:  nil,
			expected: 0,
		},
		"empty content": {
			content:  []Content{},
			expected: 0,
		},
		"no heading and no body text": {
			content:  []Content{{Heading: nil, Body: nil}, {Heading: nil, Body: paragraph("")}},
			expected: 0,
		},
		"heading and body": {
			content:  []Content{{Heading: strPtr("A B"), Body: paragraph("C D E")}},
			expected: 1,
		},
		"heading only": {
			content:  []Content{{Heading: strPtr("Somente titulo")}},
			expected: 1,
		},
		"exactly 200 words": {
			content:  []Content{{Body: paragraph(twoHundredWords)}},
			expected: 1,
		},
		"201 words": {
			content:  []Content{{Heading: strPtr("extra"), Body: paragraph(twoHundredWords)}},
			expected: 2,
		},
		"multiple body blocks are joined": {
			content: []Content{{
				Body: richtext.RichText{
					{Type: richtext.TypeParagraph, Text: "um dois"},
					{Type: richtext.TypeImage, URL: "https://images.example.com/a.png"},
					{Type: richtext.TypeListItem, Text: "tres"},
				},
			}},
			expected: 1,
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			assert.Equal(t, tc.expected, ReadingTime(tc.content))
		})
	}
}

func TestReadingTime_200EmptyHeadings(t *testing.T) {
	content := make([]Content, 0, 201)
	for i := 0; i < 200; i++ {
		content = append(content, Content{Heading: strPtr(""), Body: richtext.RichText{}})
	}
	assert.Equal(t, 1, ReadingTime(content))

	content = append(content, Content{Heading: strPtr(""), Body: nil})
	assert.Equal(t, 2, ReadingTime(content))
}

func TestContent_WordCount(t *testing.T) {
	for caseName, tc := range map[string]struct {
		content  Content
		expected int
	}{
		"empty": {
			content:  Content{},
			expected: 0,
		},
		"empty heading": {
			content:  Content{Heading: strPtr("")},
			expected: 1,
		},
		"empty body text": {
			content:  Content{Body: paragraph("")},
			expected: 0,
		},
		"heading and body blocks": {
			content: Content{
				Heading: strPtr("Proin et varius"),
				Body: richtext.RichText{
					{Type: richtext.TypeParagraph, Text: "Nullam dolor sapien"},
					{Type: richtext.TypeParagraph, Text: "eu diam"},
				},
			},
			expected: 3 + 5,
		},
		"split on single spaces": {
			content:  Content{Heading: strPtr("A  B"), Body: paragraph("C ")},
			expected: 3 + 2,
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.content.WordCount())
		})
	}
}

func TestReadingTime_MonotonicInWordCount(t *testing.T) {
	faker := gofakeit.New(42)

	var content []Content
	previousWords, previousMinutes := 0, 0
	for i := 0; i < 60; i++ {
		content = append(content, Content{
			Heading: strPtr(faker.Sentence(faker.Number(1, 6))),
			Body:    paragraph(faker.Paragraph(1, faker.Number(1, 8), faker.Number(1, 20), " ")),
		})

		words := 0
		for _, c := range content {
			words += c.WordCount()
		}
		minutes := ReadingTime(content)

		assert.GreaterOrEqual(t, words, previousWords)
		assert.GreaterOrEqual(t, minutes, previousMinutes)
		assert.Equal(t, (words+WordsPerMinute-1)/WordsPerMinute, minutes)

		previousWords, previousMinutes = words, minutes
	}
}
