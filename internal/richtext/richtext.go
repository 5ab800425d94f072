// Package richtext models CMS structured text fields and converts them
// to plain text or HTML.
package richtext

const (
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"

	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// RichText is an ordered list of blocks, as returned by the CMS for a
// structured text field.
type RichText []Block

type Block struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Spans  []Span `json:"spans,omitempty"`
	URL    string `json:"url,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Oembed *Embed `json:"oembed,omitempty"`
}

// Span annotates the [Start, End) range of a block text. Offsets are
// UTF-16 code units, the way the CMS counts them.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

type Embed struct {
	Type     string `json:"type"`
	EmbedURL string `json:"embed_url"`
	HTML     string `json:"html"`
}

func (b Block) hasText() bool {
	switch b.Type {
	case TypeImage, TypeEmbed:
		return false
	}
	return true
}
