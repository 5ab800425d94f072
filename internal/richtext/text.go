package richtext

import "strings"

const DefaultSeparator = " "

// AsText flattens the text blocks of rt into a single string, joined by
// a single space. Images and embeds carry no text and are skipped.
func AsText(rt RichText) string {
	return AsTextWithSeparator(rt, DefaultSeparator)
}

func AsTextWithSeparator(rt RichText, separator string) string {
	texts := make([]string, 0, len(rt))
	for _, block := range rt {
		if !block.hasText() {
			continue
		}
		texts = append(texts, block.Text)
	}
	return strings.Join(texts, separator)
}
