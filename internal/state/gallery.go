package state

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/coloringbook/internal/colorbook"
)

// GallerySnapshot is a copy of the gallery screen state.
type GallerySnapshot struct {
	Images                 []colorbook.ImageRecord
	IsLoading              bool
	IsSearching            bool
	ErrorMessage           string
	SearchQuery            string
	IsShowingSearchResults bool
	LastUpdated            time.Time
}

// Busy reports whether a list or search call is in flight.
func (s GallerySnapshot) Busy() bool {
	return s.IsLoading || s.IsSearching
}

// GalleryOptions configure a Gallery.
type GalleryOptions struct {
	Context   context.Context
	Service   colorbook.ImageService
	Runner    Runner
	ServerURL string
	Logger    *slog.Logger
}

// Gallery owns the image collection shown on the gallery screen.
//
// Overlapping LoadImages/SearchImages calls are not serialized: whichever
// completes last determines Images.
type Gallery struct {
	ctx    context.Context
	svc    colorbook.ImageService
	runner Runner
	logger *slog.Logger

	mu        sync.RWMutex
	serverURL string
	snapshot  GallerySnapshot
}

// NewGallery builds a Gallery. It does not load anything until LoadImages is called.
func NewGallery(opts GalleryOptions) *Gallery {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Gallery{
		ctx:       ctx,
		svc:       opts.Service,
		runner:    opts.Runner,
		logger:    loggerOrDefault(opts.Logger).With("component", "gallery"),
		serverURL: serverOrDefault(opts.ServerURL),
	}
}

// Snapshot returns a copy of the current state.
func (g *Gallery) Snapshot() GallerySnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := g.snapshot
	snap.Images = cloneImages(g.snapshot.Images)
	return snap
}

// ServerURL returns the base URL used for requests.
func (g *Gallery) ServerURL() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.serverURL
}

// SetServerURL changes the base URL for subsequent requests.
func (g *Gallery) SetServerURL(serverURL string) {
	g.mu.Lock()
	g.serverURL = serverOrDefault(serverURL)
	g.mu.Unlock()
}

// LoadImages fetches the full list. On failure the previous images stay visible.
func (g *Gallery) LoadImages() Task {
	g.mu.Lock()
	g.snapshot.IsLoading = true
	g.snapshot.ErrorMessage = ""
	base := g.serverURL
	g.mu.Unlock()

	return g.runner.Submit(func() {
		images, err := g.svc.FetchImages(g.ctx, base)

		g.mu.Lock()
		defer g.mu.Unlock()
		g.snapshot.IsLoading = false
		g.snapshot.LastUpdated = time.Now()
		if err != nil {
			if colorbook.IsCancelled(err) {
				return
			}
			g.snapshot.ErrorMessage = errorMessage(err, "Failed to load images")
			g.logger.Warn("load images failed", "server", base, "error", err)
			return
		}
		g.snapshot.Images = cloneImages(images)
		g.logger.Debug("images loaded", "count", len(images))
	})
}

// UpdateSearchQuery stores text verbatim. Emptying the query while search
// results are shown returns to the full list.
func (g *Gallery) UpdateSearchQuery(text string) Task {
	g.mu.Lock()
	g.snapshot.SearchQuery = text
	reset := text == "" && g.snapshot.IsShowingSearchResults
	g.mu.Unlock()

	if reset {
		return g.ClearSearch()
	}
	return done
}

// SearchImages searches for the trimmed query. An empty query reloads the full list.
func (g *Gallery) SearchImages() Task {
	g.mu.Lock()
	query := strings.TrimSpace(g.snapshot.SearchQuery)
	if query == "" {
		g.snapshot.IsShowingSearchResults = false
		g.mu.Unlock()
		return g.LoadImages()
	}
	g.snapshot.IsSearching = true
	g.snapshot.ErrorMessage = ""
	base := g.serverURL
	g.mu.Unlock()

	return g.runner.Submit(func() {
		images, err := g.svc.SearchImages(g.ctx, base, query)

		g.mu.Lock()
		defer g.mu.Unlock()
		g.snapshot.IsSearching = false
		g.snapshot.LastUpdated = time.Now()
		if err != nil {
			if colorbook.IsCancelled(err) {
				return
			}
			g.snapshot.ErrorMessage = errorMessage(err, "Search failed")
			g.logger.Warn("search failed", "query", query, "error", err)
			return
		}
		g.snapshot.Images = cloneImages(images)
		g.snapshot.IsShowingSearchResults = true
		g.logger.Debug("search complete", "query", query, "count", len(images))
	})
}

// ClearSearch resets the query and reloads the full list.
func (g *Gallery) ClearSearch() Task {
	g.mu.Lock()
	g.snapshot.SearchQuery = ""
	g.snapshot.IsShowingSearchResults = false
	g.mu.Unlock()

	return g.LoadImages()
}

// InsertImage puts record at the front of the collection without a reload.
func (g *Gallery) InsertImage(record colorbook.ImageRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	images := make([]colorbook.ImageRecord, 0, len(g.snapshot.Images)+1)
	images = append(images, record)
	images = append(images, g.snapshot.Images...)
	g.snapshot.Images = images
}

func cloneImages(images []colorbook.ImageRecord) []colorbook.ImageRecord {
	if len(images) == 0 {
		return nil
	}
	dup := make([]colorbook.ImageRecord, len(images))
	copy(dup, images)
	return dup
}

func errorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func serverOrDefault(serverURL string) string {
	if trimmed := strings.TrimSpace(serverURL); trimmed != "" {
		return trimmed
	}
	return colorbook.DefaultServerURL
}
