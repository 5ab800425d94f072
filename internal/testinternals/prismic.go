package testinternals

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	MasterRef   = "master-ref-test"
	ApiRootPath = "/api/v2"
)

// TestPost is a post stored in the fake content repository.
type TestPost struct {
	UID       string
	Title     string
	Subtitle  string
	Author    string
	Published string
	Sections  []TestSection
}

type TestSection struct {
	Heading    string
	Paragraphs []string
}

// FakePrismic is an in memory content repository speaking the subset of the
// Prismic REST API the site uses: api root, type listing with cursors and
// uid lookups.
type FakePrismic struct {
	Server *httptest.Server

	mu    sync.RWMutex
	posts []TestPost

	failingPage atomic.Int32
	searchCalls atomic.Int32
}

func NewFakePrismic(posts []TestPost) *FakePrismic {
	fp := &FakePrismic{posts: posts}

	mux := http.NewServeMux()
	mux.HandleFunc(ApiRootPath, fp.handleApiRoot)
	mux.HandleFunc(ApiRootPath+"/documents/search", fp.handleSearch)
	fp.Server = httptest.NewServer(mux)

	return fp
}

// DefaultTestPosts are three posts, newest first.
func DefaultTestPosts() []TestPost {
	return []TestPost{
		{
			UID:       "como-utilizar-hooks",
			Title:     "Como utilizar Hooks",
			Subtitle:  "Pensando em sincronização em vez de ciclos de vida.",
			Author:    "Joseph Oliveira",
			Published: "2021-03-15T19:25:28+0000",
			Sections: []TestSection{
				{Heading: "Proin et varius", Paragraphs: []string{strings.Repeat("lorem ipsum ", 150)}},
				{Heading: "Cras laoreet mi", Paragraphs: []string{strings.Repeat("dolor sit amet ", 50)}},
			},
		},
		{
			UID:       "criando-um-app-cra-do-zero",
			Title:     "Criando um app CRA do zero",
			Subtitle:  "Tudo sobre como criar a sua primeira aplicação utilizando Create React App",
			Author:    "Danilo Vieira",
			Published: "2021-03-19T19:25:28+0000",
			Sections: []TestSection{
				{Heading: "", Paragraphs: []string{"Curto."}},
			},
		},
		{
			UID:       "rascunho",
			Title:     "Rascunho",
			Subtitle:  "Ainda não publicado",
			Author:    "Joseph Oliveira",
			Published: "",
		},
	}
}

func (fp *FakePrismic) Endpoint() string {
	return fp.Server.URL + ApiRootPath
}

func (fp *FakePrismic) Close() {
	fp.Server.Close()
}

// FailPage makes searches for the given listing page answer 500, 0 turns
// it off.
func (fp *FakePrismic) FailPage(page int) {
	fp.failingPage.Store(int32(page))
}

func (fp *FakePrismic) SearchCalls() int {
	return int(fp.searchCalls.Load())
}

func (fp *FakePrismic) handleApiRoot(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, map[string]interface{}{
		"refs": []map[string]interface{}{
			{"id": "master", "ref": MasterRef, "label": "Master", "isMasterRef": true},
		},
	})
}

func (fp *FakePrismic) handleSearch(w http.ResponseWriter, r *http.Request) {
	fp.searchCalls.Add(1)

	q := r.URL.Query()
	if q.Get("ref") != MasterRef {
		http.Error(w, `{"message": "bad ref"}`, http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	if failing := int(fp.failingPage.Load()); failing > 0 && failing == page {
		http.Error(w, `{"message": "internal error"}`, http.StatusInternalServerError)
		return
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	query := q.Get("q")
	switch {
	case query == `[[at(document.type,"posts")]]`:
		fp.writeListing(w, r, page, pageSize)
	case strings.HasPrefix(query, `[[at(my.posts.uid,"`):
		uid := strings.TrimSuffix(strings.TrimPrefix(query, `[[at(my.posts.uid,"`), `")]]`)
		var results []map[string]interface{}
		for _, p := range fp.posts {
			if p.UID == uid {
				results = append(results, postDocument(p))
			}
		}
		writeJson(w, searchResponse(1, 1, len(results), results, nil))
	default:
		writeJson(w, searchResponse(1, pageSize, 0, nil, nil))
	}
}

func (fp *FakePrismic) writeListing(w http.ResponseWriter, r *http.Request, page, pageSize int) {
	from := (page - 1) * pageSize
	to := from + pageSize
	if from > len(fp.posts) {
		from = len(fp.posts)
	}
	if to > len(fp.posts) {
		to = len(fp.posts)
	}

	results := make([]map[string]interface{}, 0, to-from)
	for _, p := range fp.posts[from:to] {
		results = append(results, postDocument(p))
	}

	var nextPage *string
	if to < len(fp.posts) {
		next := *r.URL
		next.Scheme = "http"
		next.Host = r.Host
		values := next.Query()
		values.Set("page", strconv.Itoa(page+1))
		next.RawQuery = values.Encode()
		nextURL := next.String()
		nextPage = &nextURL
	}

	writeJson(w, searchResponse(page, pageSize, len(fp.posts), results, nextPage))
}

func searchResponse(page, pageSize, total int, results []map[string]interface{}, nextPage *string) map[string]interface{} {
	if results == nil {
		results = []map[string]interface{}{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return map[string]interface{}{
		"page":               page,
		"results_per_page":   pageSize,
		"results_size":       len(results),
		"total_results_size": total,
		"total_pages":        totalPages,
		"next_page":          nextPage,
		"prev_page":          nil,
		"results":            results,
	}
}

func postDocument(p TestPost) map[string]interface{} {
	content := make([]map[string]interface{}, 0, len(p.Sections))
	for _, s := range p.Sections {
		body := make([]map[string]interface{}, 0, len(s.Paragraphs))
		for _, paragraph := range s.Paragraphs {
			body = append(body, map[string]interface{}{
				"type":  "paragraph",
				"text":  paragraph,
				"spans": []interface{}{},
			})
		}
		content = append(content, map[string]interface{}{
			"heading": s.Heading,
			"body":    body,
		})
	}

	var published interface{}
	if p.Published != "" {
		published = p.Published
	}

	return map[string]interface{}{
		"id":                     fmt.Sprintf("id-%s", url.PathEscape(p.UID)),
		"uid":                    p.UID,
		"type":                   "posts",
		"lang":                   "pt-br",
		"first_publication_date": published,
		"last_publication_date":  published,
		"data": map[string]interface{}{
			"title":    p.Title,
			"subtitle": p.Subtitle,
			"author":   p.Author,
			"banner":   map[string]interface{}{"url": "https://images.prismic.io/" + p.UID + ".png", "alt": p.Title},
			"content":  content,
		},
	}
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
