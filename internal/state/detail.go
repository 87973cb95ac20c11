package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/five82/coloringbook/internal/colorbook"
	"github.com/five82/coloringbook/internal/printpage"
)

// ErrNoImage is returned by PrintPage before an image has been loaded.
var ErrNoImage = errors.New("no image loaded")

// DetailSnapshot is a copy of the detail screen state.
type DetailSnapshot struct {
	Record         colorbook.ImageRecord
	Image          image.Image
	Format         string // detected MIME type of the loaded bytes
	IsLoading      bool
	LoadError      bool
	ShowPrintError bool
	LastPrintPath  string
}

// Loaded reports whether a decoded image is available.
func (s DetailSnapshot) Loaded() bool {
	return s.Image != nil
}

// DetailOptions configure a Detail.
type DetailOptions struct {
	Context  context.Context
	Fetcher  colorbook.ByteFetcher
	Runner   Runner
	Logger   *slog.Logger
	PrintDPI int
}

// Detail loads and decodes a single image. It is one-shot per screen: Close
// cancels whatever is in flight and the instance is not reused.
type Detail struct {
	ctx      context.Context
	cancel   context.CancelFunc
	fetcher  colorbook.ByteFetcher
	runner   Runner
	logger   *slog.Logger
	printDPI int

	mu       sync.RWMutex
	snapshot DetailSnapshot
}

// NewDetail builds a Detail bound to a child of opts.Context.
func NewDetail(opts DetailOptions) *Detail {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Detail{
		ctx:      ctx,
		cancel:   cancel,
		fetcher:  opts.Fetcher,
		runner:   opts.Runner,
		logger:   loggerOrDefault(opts.Logger).With("component", "detail"),
		printDPI: opts.PrintDPI,
	}
}

// Snapshot returns a copy of the current state. The decoded image is shared
// and must be treated as read-only.
func (d *Detail) Snapshot() DetailSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// LoadImage fetches and decodes record's full-size image. URL, fetch and
// decode failures all end in LoadError.
func (d *Detail) LoadImage(record colorbook.ImageRecord, baseURL string) Task {
	d.mu.Lock()
	d.snapshot = DetailSnapshot{Record: record, IsLoading: true}
	d.mu.Unlock()

	rawURL := record.ResolveURL(baseURL)
	if !resolvable(rawURL) {
		d.logger.Warn("image url not resolvable", "image", record.ID, "url", rawURL)
		d.fail()
		return done
	}

	return d.runner.Submit(func() {
		data, err := d.fetcher.FetchBytes(d.ctx, rawURL)
		if err != nil {
			if colorbook.IsCancelled(err) {
				d.settle()
				return
			}
			d.logger.Warn("image fetch failed", "image", record.ID, "url", rawURL, "error", err)
			d.fail()
			return
		}

		img, format, err := decodeImage(data)
		if err != nil {
			d.logger.Warn("image decode failed", "image", record.ID, "bytes", len(data), "error", err)
			d.fail()
			return
		}

		d.mu.Lock()
		d.snapshot.Image = img
		d.snapshot.Format = format
		d.snapshot.IsLoading = false
		d.snapshot.LoadError = false
		d.mu.Unlock()

		b := img.Bounds()
		d.logger.Debug("image loaded", "image", record.ID, "width", b.Dx(), "height", b.Dy(), "format", format)
	})
}

// PrintPage writes a print-ready US-letter PNG of the loaded image into dir and
// returns its path. Without a loaded image, or on failure, ShowPrintError is set.
func (d *Detail) PrintPage(dir string) (string, error) {
	d.mu.RLock()
	img := d.snapshot.Image
	record := d.snapshot.Record
	d.mu.RUnlock()

	path, err := d.writePrintPage(img, record, dir)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.snapshot.ShowPrintError = true
		d.logger.Warn("print page failed", "image", record.ID, "error", err)
		return "", err
	}
	d.snapshot.LastPrintPath = path
	d.logger.Info("print page written", "image", record.ID, "path", path)
	return path, nil
}

// DismissPrintError clears ShowPrintError.
func (d *Detail) DismissPrintError() {
	d.mu.Lock()
	d.snapshot.ShowPrintError = false
	d.mu.Unlock()
}

// Close cancels in-flight work.
func (d *Detail) Close() {
	d.cancel()
}

func (d *Detail) writePrintPage(img image.Image, record colorbook.ImageRecord, dir string) (string, error) {
	if img == nil {
		return "", ErrNoImage
	}
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("print directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create print dir: %w", err)
	}
	page := printpage.Compose(img, d.printDPI)
	path := filepath.Join(dir, printFileName(record))
	if err := printpage.Save(page, path); err != nil {
		return "", err
	}
	return path, nil
}

func (d *Detail) fail() {
	d.mu.Lock()
	d.snapshot.IsLoading = false
	d.snapshot.LoadError = true
	d.mu.Unlock()
}

func (d *Detail) settle() {
	d.mu.Lock()
	d.snapshot.IsLoading = false
	d.mu.Unlock()
}

func decodeImage(data []byte) (image.Image, string, error) {
	format := http.DetectContentType(data)
	if !strings.HasPrefix(format, "image/") {
		return nil, format, &colorbook.ServiceError{
			Kind: colorbook.KindDecodeFailure,
			Err:  fmt.Errorf("content type %s is not an image", format),
		}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, &colorbook.ServiceError{Kind: colorbook.KindDecodeFailure, Err: err}
	}
	return img, format, nil
}

func resolvable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func printFileName(record colorbook.ImageRecord) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, record.ID)
	if name == "" {
		name = "image"
	}
	return name + "-print.png"
}
