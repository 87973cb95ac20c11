package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/coloringbook/internal/colorbook"
)

func newTestGallery(t *testing.T, svc *fakeService) *Gallery {
	t.Helper()
	return NewGallery(GalleryOptions{
		Context:   context.Background(),
		Service:   svc,
		Runner:    newTestPool(t),
		ServerURL: "http://test.local",
	})
}

func TestGallery_LoadImagesSuccess(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1"), record("img2")}}
	g := newTestGallery(t, svc)

	task := g.LoadImages()
	assert.True(t, g.Snapshot().IsLoading, "IsLoading should be set before the call completes")
	require.NoError(t, task.Wait())

	snap := g.Snapshot()
	require.Len(t, snap.Images, 2)
	assert.Equal(t, "img1", snap.Images[0].ID)
	assert.False(t, snap.IsLoading)
	assert.Empty(t, snap.ErrorMessage)
	assert.Equal(t, "http://test.local", svc.lastBase)
}

func TestGallery_LoadImagesServerError(t *testing.T) {
	svc := &fakeService{fetchErr: colorbook.ServerError(500)}
	g := newTestGallery(t, svc)

	require.NoError(t, g.LoadImages().Wait())

	snap := g.Snapshot()
	assert.Empty(t, snap.Images)
	assert.Equal(t, "Server error: 500", snap.ErrorMessage)
	assert.False(t, snap.IsLoading)
}

func TestGallery_LoadFailureKeepsStaleImages(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1")}}
	g := newTestGallery(t, svc)
	require.NoError(t, g.LoadImages().Wait())

	svc.mu.Lock()
	svc.fetchErr = colorbook.ErrInvalidResponse
	svc.mu.Unlock()
	require.NoError(t, g.LoadImages().Wait())

	snap := g.Snapshot()
	require.Len(t, snap.Images, 1)
	assert.Equal(t, "Invalid response from server", snap.ErrorMessage)
}

func TestGallery_CancelledLoadShowsNoError(t *testing.T) {
	svc := &fakeService{fetchErr: &colorbook.ServiceError{Kind: colorbook.KindCancelled, Err: context.Canceled}}
	g := newTestGallery(t, svc)

	require.NoError(t, g.LoadImages().Wait())

	snap := g.Snapshot()
	assert.Empty(t, snap.ErrorMessage)
	assert.False(t, snap.IsLoading)
}

func TestGallery_SearchShowsResults(t *testing.T) {
	svc := &fakeService{searchFunc: func(query string) ([]colorbook.ImageRecord, error) {
		return []colorbook.ImageRecord{record("cat")}, nil
	}}
	g := newTestGallery(t, svc)

	require.NoError(t, g.UpdateSearchQuery("  cat ").Wait())
	task := g.SearchImages()
	assert.True(t, g.Snapshot().IsSearching)
	require.NoError(t, task.Wait())

	snap := g.Snapshot()
	require.Len(t, snap.Images, 1)
	assert.True(t, snap.IsShowingSearchResults)
	assert.False(t, snap.IsSearching)
	assert.Equal(t, "  cat ", snap.SearchQuery, "query is stored verbatim")

	_, searches := svc.calls()
	assert.Equal(t, []string{"cat"}, searches, "query is trimmed before searching")
}

func TestGallery_SearchFailureKeepsImages(t *testing.T) {
	svc := &fakeService{
		images: []colorbook.ImageRecord{record("img1")},
		searchFunc: func(string) ([]colorbook.ImageRecord, error) {
			return nil, colorbook.ServerError(503)
		},
	}
	g := newTestGallery(t, svc)
	require.NoError(t, g.LoadImages().Wait())

	g.UpdateSearchQuery("dog")
	require.NoError(t, g.SearchImages().Wait())

	snap := g.Snapshot()
	assert.Len(t, snap.Images, 1)
	assert.False(t, snap.IsShowingSearchResults)
	assert.Equal(t, "Server error: 503", snap.ErrorMessage)
}

func TestGallery_EmptySearchReloads(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1")}}
	g := newTestGallery(t, svc)

	g.UpdateSearchQuery("   ")
	require.NoError(t, g.SearchImages().Wait())

	fetches, searches := svc.calls()
	assert.Equal(t, 1, fetches)
	assert.Empty(t, searches)
	assert.False(t, g.Snapshot().IsShowingSearchResults)
}

func TestGallery_EmptyQueryWhileShowingResultsClearsSearch(t *testing.T) {
	svc := &fakeService{
		images: []colorbook.ImageRecord{record("img1"), record("img2")},
		searchFunc: func(string) ([]colorbook.ImageRecord, error) {
			return []colorbook.ImageRecord{record("cat")}, nil
		},
	}
	g := newTestGallery(t, svc)

	g.UpdateSearchQuery("cat")
	require.NoError(t, g.SearchImages().Wait())
	require.True(t, g.Snapshot().IsShowingSearchResults)

	require.NoError(t, g.UpdateSearchQuery("").Wait())

	snap := g.Snapshot()
	assert.False(t, snap.IsShowingSearchResults)
	assert.Len(t, snap.Images, 2)
	fetches, _ := svc.calls()
	assert.Equal(t, 1, fetches, "clearing the query should reload the list")
}

func TestGallery_EmptyQueryWithoutResultsDoesNothing(t *testing.T) {
	svc := &fakeService{}
	g := newTestGallery(t, svc)

	require.NoError(t, g.UpdateSearchQuery("").Wait())

	fetches, _ := svc.calls()
	assert.Zero(t, fetches)
}

func TestGallery_ClearSearch(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1")}}
	g := newTestGallery(t, svc)
	g.UpdateSearchQuery("cat")

	require.NoError(t, g.ClearSearch().Wait())

	snap := g.Snapshot()
	assert.Empty(t, snap.SearchQuery)
	assert.False(t, snap.IsShowingSearchResults)
	assert.Len(t, snap.Images, 1)
}

func TestGallery_InsertImagePrepends(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1")}}
	g := newTestGallery(t, svc)
	require.NoError(t, g.LoadImages().Wait())

	g.InsertImage(record("new"))

	snap := g.Snapshot()
	require.Len(t, snap.Images, 2)
	assert.Equal(t, "new", snap.Images[0].ID)
	assert.Equal(t, "img1", snap.Images[1].ID)
}

func TestGallery_SnapshotIsACopy(t *testing.T) {
	svc := &fakeService{images: []colorbook.ImageRecord{record("img1")}}
	g := newTestGallery(t, svc)
	require.NoError(t, g.LoadImages().Wait())

	snap := g.Snapshot()
	snap.Images[0].ID = "mutated"

	assert.Equal(t, "img1", g.Snapshot().Images[0].ID)
}

func TestGallery_SetServerURL(t *testing.T) {
	svc := &fakeService{}
	g := newTestGallery(t, svc)

	g.SetServerURL("http://other:8000")
	require.NoError(t, g.LoadImages().Wait())
	assert.Equal(t, "http://other:8000", svc.lastBase)

	g.SetServerURL("  ")
	assert.Equal(t, colorbook.DefaultServerURL, g.ServerURL())
}
