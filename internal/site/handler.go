package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/spacetraveling/internal/middleware"
	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/prismic"
	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/pkg"
)

const (
	DefaultMaxPages = 10

	loadMoreRouterName = "load-more"
)

type postsService interface {
	Home(ctx context.Context, pages int) (posts.Pagination, error)
	LoadMore(ctx context.Context, current posts.Pagination) (posts.Pagination, error)
	Post(ctx context.Context, uid string) (*posts.Post, error)
}

type Handler struct {
	service        postsService
	renderer       *Renderer
	maxPages       int
	metricsManager *metrics.Manager
}

func NewHandler(
	service postsService,
	renderer *Renderer,
	maxPages int,
	metricsManager *metrics.Manager,
) *Handler {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	return &Handler{
		service:        service,
		renderer:       renderer,
		maxPages:       maxPages,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the site routes. The load-more API is rate limited
// only when a rate limiter is given.
func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loadMorePerMin int,
) {
	router.HandleFunc("/", handler.handleHome).Methods("GET").Name("home")
	router.HandleFunc("/post/{slug}", handler.handlePost).Methods("GET").Name("post")
	router.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	router.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", http.FileServer(http.FS(StaticFiles())))).
		Methods("GET").
		Name("static")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/posts", handler.handleLoadMore).Methods("GET").Name(loadMoreRouterName)
	if rateLimiter != nil {
		apiRouter.Use(middleware.RateLimit(rateLimiter, loadMoreRouterName, loadMorePerMin, handler.metricsManager))
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.renderError(w, http.StatusNotFound, ErrorView{
			Title:   "Página não encontrada",
			Message: "O conteúdo que você procura não existe.",
		})
	})
}

func (handler *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	pages := 1
	if pagesParam := r.URL.Query().Get("pages"); pagesParam != "" {
		parsed, err := strconv.Atoi(pagesParam)
		if err != nil {
			http.Error(w, "invalid pages param", http.StatusBadRequest)
			return
		}
		pages = parsed
	}
	pages = clampPages(pages, handler.maxPages)

	pagination, err := handler.service.Home(r.Context(), pages)
	loadMoreFailed := false
	if err != nil {
		var loadMoreErr *posts.LoadMoreError
		if !errors.As(err, &loadMoreErr) {
			log.Errorf("home: get posts: %s", err)
			handler.renderError(w, http.StatusBadGateway, upstreamErrorView)
			return
		}
		// keep what was loaded, the retry asks for the same page count again
		log.Warnf("home: %d pages requested: %s", pages, err)
		loadMoreFailed = true
	}

	view := HomeView{
		Posts:          pagination.Results,
		HasMore:        pagination.HasMore() && pages < handler.maxPages,
		LoadMoreURL:    fmt.Sprintf("/?pages=%d", pages+1),
		LoadMoreFailed: loadMoreFailed,
	}
	if loadMoreFailed {
		view.LoadMoreURL = fmt.Sprintf("/?pages=%d", pages)
	}

	handler.renderHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return handler.renderer.Home(buf, view)
	})
}

func (handler *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	post, err := handler.service.Post(r.Context(), slug)
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			log.Debugf("post [%s] not found", slug)
			handler.renderError(w, http.StatusNotFound, ErrorView{
				Title:   "Post não encontrado",
				Message: "O post que você procura não existe.",
			})
			return
		}
		log.Errorf("get post [%s]: %s", slug, err)
		handler.renderError(w, http.StatusBadGateway, upstreamErrorView)
		return
	}

	view := NewPostView(post)
	if handler.metricsManager != nil {
		handler.metricsManager.HistReadingTimeMinutes.Observe(float64(view.ReadingTime))
	}

	handler.renderHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return handler.renderer.Post(buf, view)
	})
}

// handleLoadMore follows a next_page cursor and returns that single page;
// the client appends it to what it already shows.
func (handler *Handler) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("next_page")
	if cursor == "" {
		pkg.WriteJSONError(w, "next_page param missing", http.StatusBadRequest)
		return
	}

	page, err := handler.service.LoadMore(r.Context(), posts.Pagination{NextPage: cursor})
	if err != nil {
		if errors.Is(err, prismic.ErrForeignCursor) {
			pkg.WriteJSONError(w, "invalid next_page param", http.StatusBadRequest)
			return
		}
		log.Errorf("load more: %s", err)
		pkg.WriteJSONError(w, "failed to load more posts", http.StatusBadGateway)
		return
	}

	pkg.WriteJSONResponse(w, page, http.StatusOK)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK")
}

var upstreamErrorView = ErrorView{
	Title:   "Algo deu errado",
	Message: "Não foi possível carregar o conteúdo. Tente novamente em instantes.",
}

func (handler *Handler) renderError(w http.ResponseWriter, status int, view ErrorView) {
	handler.renderHTML(w, status, func(buf *bytes.Buffer) error {
		return handler.renderer.Error(buf, view)
	})
}

func (handler *Handler) renderHTML(w http.ResponseWriter, status int, render func(buf *bytes.Buffer) error) {
	buf := &bytes.Buffer{}
	if err := render(buf); err != nil {
		log.Errorf("render page: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

func clampPages(pages, maxPages int) int {
	if pages < 1 {
		return 1
	}
	if pages > maxPages {
		return maxPages
	}
	return pages
}
