package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/richtext"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageHome  = "home"
	pagePost  = "post"
	pageError = "error"
)

type HomeView struct {
	Posts          []posts.PostSummary
	HasMore        bool
	LoadMoreURL    string
	LoadMoreFailed bool
}

type PostView struct {
	Title       string
	Banner      posts.Banner
	Author      string
	PublishedAt *time.Time
	ReadingTime int
	Sections    []SectionView
}

type SectionView struct {
	Heading string
	Body    template.HTML
}

type ErrorView struct {
	Title   string
	Message string
}

func NewPostView(post *posts.Post) PostView {
	sections := make([]SectionView, 0, len(post.Data.Content))
	for _, c := range post.Data.Content {
		sections = append(sections, SectionView{
			Heading: c.HeadingText(),
			// rich text serialization escapes all CMS text
			Body: template.HTML(richtext.AsHTML(c.Body)),
		})
	}

	return PostView{
		Title:       post.Data.Title,
		Banner:      post.Data.Banner,
		Author:      post.Data.Author,
		PublishedAt: post.FirstPublicationDate,
		ReadingTime: posts.ReadingTime(post.Data.Content),
		Sections:    sections,
	}
}

// Renderer renders the site pages, each one wrapped in the common layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"formatDate": formatDate,
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageHome, pagePost, pageError} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(
			templatesFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

func (r *Renderer) Home(w io.Writer, view HomeView) error {
	return r.render(w, pageHome, view)
}

func (r *Renderer) Post(w io.Writer, view PostView) error {
	return r.render(w, pagePost, view)
}

func (r *Renderer) Error(w io.Writer, view ErrorView) error {
	return r.render(w, pageError, view)
}

// render executes the page fully before writing anything to w, so a
// failing template never leaves a half written page behind.
func (r *Renderer) render(w io.Writer, page string, data interface{}) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page: %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// StaticFiles holds the site assets (logo, styles), rooted at the static dir.
func StaticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at compile time
		panic(err)
	}
	return sub
}
