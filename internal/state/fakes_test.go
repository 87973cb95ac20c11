package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alitto/pond/v2"

	"github.com/five82/coloringbook/internal/colorbook"
)

// fakeService implements colorbook.ImageService and colorbook.ByteFetcher.
type fakeService struct {
	mu sync.Mutex

	images      []colorbook.ImageRecord
	fetchErr    error
	searchFunc  func(query string) ([]colorbook.ImageRecord, error)
	generate    func(ctx context.Context, prompt string) (colorbook.ImageRecord, error)
	bytes       map[string][]byte
	fetchCalls  int
	searchCalls []string
	lastToken   string
	lastBase    string
}

func (f *fakeService) FetchImages(_ context.Context, baseURL string) ([]colorbook.ImageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastBase = baseURL
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.images, nil
}

func (f *fakeService) SearchImages(_ context.Context, baseURL, query string) ([]colorbook.ImageRecord, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.lastBase = baseURL
	fn := f.searchFunc
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("search not configured")
	}
	return fn(query)
}

func (f *fakeService) GenerateImage(ctx context.Context, baseURL, prompt, appToken string) (colorbook.ImageRecord, error) {
	f.mu.Lock()
	f.lastToken = appToken
	f.lastBase = baseURL
	fn := f.generate
	f.mu.Unlock()
	if fn == nil {
		return colorbook.ImageRecord{}, errors.New("generate not configured")
	}
	return fn(ctx, prompt)
}

func (f *fakeService) FetchBytes(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.bytes[rawURL]
	if !ok {
		return nil, colorbook.ServerError(404)
	}
	return data, nil
}

func (f *fakeService) calls() (fetch int, searches []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, append([]string(nil), f.searchCalls...)
}

func newTestPool(t *testing.T) pond.Pool {
	t.Helper()
	pool := NewPool(context.Background(), 4)
	t.Cleanup(func() { pool.StopAndWait() })
	return pool
}

func record(id string) colorbook.ImageRecord {
	return colorbook.ImageRecord{
		ID:       id,
		Filename: id + ".png",
		Title:    "Image " + id,
		URL:      "/images/" + id + ".png",
	}
}
