package builder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/2beens/spacetraveling/internal/posts"
	"github.com/2beens/spacetraveling/internal/site"
	"github.com/2beens/spacetraveling/internal/telemetry/metrics"
	"github.com/2beens/spacetraveling/internal/telemetry/tracing"
	"github.com/2beens/spacetraveling/pkg"
)

const (
	indexFileName = "index.html"
	staticDir     = "static"
)

type postsService interface {
	FirstPage(ctx context.Context) (posts.Pagination, error)
	LoadMore(ctx context.Context, current posts.Pagination) (posts.Pagination, error)
	Post(ctx context.Context, uid string) (*posts.Post, error)
	AllSlugs(ctx context.Context) ([]string, error)
}

// Builder renders the whole site into a directory tree that any static
// file server can serve.
type Builder struct {
	service        postsService
	renderer       *site.Renderer
	maxPages       int
	metricsManager *metrics.Manager
}

type Result struct {
	ListingPages int
	Posts        int
}

func NewBuilder(
	service postsService,
	renderer *site.Renderer,
	maxPages int,
	metricsManager *metrics.Manager,
) *Builder {
	if maxPages < 1 {
		maxPages = site.DefaultMaxPages
	}
	return &Builder{
		service:        service,
		renderer:       renderer,
		maxPages:       maxPages,
		metricsManager: metricsManager,
	}
}

// Build writes:
//   - index.html, the first listing page
//   - pages/{n}/index.html, the first n listing pages accumulated
//   - post/{uid}/index.html for every post
//   - static/, the site assets
//
// A failing listing aborts the build. Failing posts are skipped and their
// errors returned together once every other post is written.
func (b *Builder) Build(ctx context.Context, outDir string) (*Result, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "builder.build")
	defer span.End()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}

	result := &Result{}

	listingPages, err := b.buildListing(ctx, outDir)
	if err != nil {
		return nil, err
	}
	result.ListingPages = listingPages

	if err := b.copyStatic(outDir); err != nil {
		return nil, err
	}

	slugs, err := b.service.AllSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get post slugs: %w", err)
	}

	var postErrs error
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(postErrs, err)
		}
		if err := b.buildPost(ctx, outDir, slug); err != nil {
			log.Errorf("build post [%s]: %s", slug, err)
			postErrs = multierr.Append(postErrs, fmt.Errorf("post %s: %w", slug, err))
			continue
		}
		result.Posts++
	}

	span.SetAttributes(
		attribute.Int("listing.pages", result.ListingPages),
		attribute.Int("posts", result.Posts),
	)
	log.Infof("site built in [%s]: %d listing pages, %d posts", outDir, result.ListingPages, result.Posts)

	return result, postErrs
}

// buildListing writes index.html and the accumulated listing pages, and
// returns how many listing pages were written.
func (b *Builder) buildListing(ctx context.Context, outDir string) (int, error) {
	pagination, err := b.service.FirstPage(ctx)
	if err != nil {
		return 0, fmt.Errorf("get first page: %w", err)
	}

	for page := 1; ; page++ {
		view := site.HomeView{
			Posts:       pagination.Results,
			HasMore:     pagination.HasMore() && page < b.maxPages,
			LoadMoreURL: listingPageURL(page + 1),
		}

		paths := []string{filepath.Join(outDir, "pages", fmt.Sprint(page), indexFileName)}
		if page == 1 {
			paths = append(paths, filepath.Join(outDir, indexFileName))
		}
		for _, path := range paths {
			if err := b.writePage(path, func(buf *bytes.Buffer) error {
				return b.renderer.Home(buf, view)
			}); err != nil {
				return page - 1, err
			}
		}

		if !view.HasMore {
			return page, nil
		}

		pagination, err = b.service.LoadMore(ctx, pagination)
		if err != nil {
			// the written pages link to one that was not built
			return page, fmt.Errorf("load listing page %d: %w", page+1, err)
		}
	}
}

func (b *Builder) buildPost(ctx context.Context, outDir, slug string) error {
	post, err := b.service.Post(ctx, slug)
	if err != nil {
		return err
	}

	view := site.NewPostView(post)
	if b.metricsManager != nil {
		b.metricsManager.HistReadingTimeMinutes.Observe(float64(view.ReadingTime))
	}

	return b.writePage(filepath.Join(outDir, "post", slug, indexFileName), func(buf *bytes.Buffer) error {
		return b.renderer.Post(buf, view)
	})
}

func (b *Builder) copyStatic(outDir string) error {
	dst := filepath.Join(outDir, staticDir)
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clean static dir: %w", err)
	}
	if err := os.CopyFS(dst, site.StaticFiles()); err != nil {
		return fmt.Errorf("copy static files: %w", err)
	}
	return nil
}

func (b *Builder) writePage(path string, render func(buf *bytes.Buffer) error) error {
	buf := &bytes.Buffer{}
	if err := render(buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if b.metricsManager != nil {
		b.metricsManager.CounterPagesBuilt.Inc()
	}
	log.Tracef("page written: %s", path)

	return nil
}

// Archive writes the built site in outDir as a tar.gz file at archivePath.
func Archive(outDir, archivePath string) (err error) {
	exists, err := pkg.PathExists(outDir, true)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("out dir [%s] does not exist", outDir)
	}

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		err = multierr.Append(err, archiveFile.Close())
	}()

	if err := pkg.Compress(outDir, archiveFile); err != nil {
		return fmt.Errorf("compress %s: %w", outDir, err)
	}

	return nil
}

func listingPageURL(page int) string {
	return fmt.Sprintf("/pages/%d/", page)
}
