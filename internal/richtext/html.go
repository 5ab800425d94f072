package richtext

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf16"
)

// AsHTML serializes rt into HTML. Consecutive list items are grouped into
// a single <ul> or <ol>; all text is escaped.
func AsHTML(rt RichText) string {
	var b strings.Builder
	openList := ""

	closeList := func() {
		if openList != "" {
			fmt.Fprintf(&b, "</%s>", openList)
			openList = ""
		}
	}

	for _, block := range rt {
		listTag := ""
		switch block.Type {
		case TypeListItem:
			listTag = "ul"
		case TypeOListItem:
			listTag = "ol"
		}

		if listTag != openList {
			closeList()
			if listTag != "" {
				fmt.Fprintf(&b, "<%s>", listTag)
				openList = listTag
			}
		}

		b.WriteString(blockHTML(block))
	}
	closeList()

	return b.String()
}

func blockHTML(block Block) string {
	switch block.Type {
	case TypeHeading1, TypeHeading2, TypeHeading3, TypeHeading4, TypeHeading5, TypeHeading6:
		tag := "h" + strings.TrimPrefix(block.Type, "heading")
		return wrapTag(tag, spansHTML(block.Text, block.Spans))
	case TypePreformatted:
		return wrapTag("pre", spansHTML(block.Text, block.Spans))
	case TypeListItem, TypeOListItem:
		return wrapTag("li", spansHTML(block.Text, block.Spans))
	case TypeImage:
		return fmt.Sprintf(
			`<p class="block-img"><img src="%s" alt="%s" /></p>`,
			html.EscapeString(block.URL), html.EscapeString(block.Alt),
		)
	case TypeEmbed:
		if block.Oembed == nil {
			return ""
		}
		// embed markup comes from the CMS oEmbed provider and is trusted as is
		return fmt.Sprintf(
			`<div data-oembed="%s" data-oembed-type="%s">%s</div>`,
			html.EscapeString(block.Oembed.EmbedURL), html.EscapeString(block.Oembed.Type), block.Oembed.HTML,
		)
	default:
		return wrapTag("p", spansHTML(block.Text, block.Spans))
	}
}

func wrapTag(tag, inner string) string {
	return "<" + tag + ">" + inner + "</" + tag + ">"
}

func spansHTML(text string, spans []Span) string {
	units := utf16.Encode([]rune(text))
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sortSpans(sorted)
	return serializeRange(units, 0, len(units), sorted)
}

// sortSpans orders by start, the wider span first, so that a span always
// precedes the spans nested in it.
func sortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
}

func serializeRange(units []uint16, start, end int, spans []Span) string {
	var b strings.Builder
	pos := start

	for len(spans) > 0 {
		s := spans[0]
		spans = spans[1:]

		sStart := clamp(s.Start, pos, end)
		sEnd := clamp(s.End, pos, end)
		if sEnd <= sStart {
			continue
		}

		b.WriteString(escapeUnits(units[pos:sStart]))

		// spans starting inside s are rendered inside it; whatever part of
		// them sticks out past s is carried over after it
		var inner, carried []Span
		rest := spans[:0:0]
		for _, other := range spans {
			if other.Start >= sEnd {
				rest = append(rest, other)
				continue
			}
			inner = append(inner, other)
			if other.End > sEnd {
				carried = append(carried, Span{Start: sEnd, End: other.End, Type: other.Type, Data: other.Data})
			}
		}

		b.WriteString(wrapSpan(s, serializeRange(units, sStart, sEnd, inner)))
		pos = sEnd

		spans = append(carried, rest...)
		sortSpans(spans)
	}

	b.WriteString(escapeUnits(units[pos:end]))
	return b.String()
}

func wrapSpan(s Span, inner string) string {
	switch s.Type {
	case SpanStrong:
		return wrapTag("strong", inner)
	case SpanEm:
		return wrapTag("em", inner)
	case SpanHyperlink:
		if s.Data == nil || s.Data.URL == "" {
			return inner
		}
		target := ""
		if s.Data.Target != "" {
			target = fmt.Sprintf(` target="%s" rel="noopener noreferrer"`, html.EscapeString(s.Data.Target))
		}
		return fmt.Sprintf(`<a href="%s"%s>%s</a>`, html.EscapeString(s.Data.URL), target, inner)
	case SpanLabel:
		if s.Data == nil || s.Data.Label == "" {
			return inner
		}
		return fmt.Sprintf(`<span class="%s">%s</span>`, html.EscapeString(s.Data.Label), inner)
	default:
		return inner
	}
}

func escapeUnits(units []uint16) string {
	escaped := html.EscapeString(string(utf16.Decode(units)))
	return strings.ReplaceAll(escaped, "\n", "<br />")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
