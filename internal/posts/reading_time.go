package posts

import (
	"strings"

	"github.com/2beens/spacetraveling/internal/richtext"
)

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// ReadingTime estimates the minutes needed to read content, rounded up.
// Empty content, or content without words, takes 0 minutes.
func ReadingTime(content []Content) int {
	words := 0
	for _, c := range content {
		words += c.WordCount()
	}

	if words == 0 {
		return 0
	}

	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// WordCount counts the space separated words of the heading and of the
// flattened body. A present heading counts at least one word, even when
// empty; a body without text counts none.
func (c Content) WordCount() int {
	words := 0
	if c.Heading != nil {
		words += len(strings.Split(*c.Heading, " "))
	}
	if text := richtext.AsText(c.Body); text != "" {
		words += len(strings.Split(text, " "))
	}
	return words
}
