// Package colorbook provides an HTTP client for the coloring book image API.
//
// # Overview
//
// The package defines the ImageRecord entity, the wire payloads of the API and a
// stateless Client that the gallery, generation and detail state containers
// share. Client methods take the server base URL on every call, so changing the
// server at runtime never requires a new Client.
//
// # API Endpoints
//
//   - GET  /api/images           list, {images: [...]}
//   - GET  /api/search?q=<query> search, {images: [...], query, total}
//   - POST /api/generate         {prompt} -> {image: {...}}, optional X-App-Token header
//   - GET  /api/health           200 means healthy
//
// Image bytes are fetched from the record's url or thumbnailUrl resolved against
// the base URL (see ImageRecord.ResolveURL).
//
// # Error Handling
//
// Anything other than HTTP 200 is a ServiceError of kind KindServerError carrying
// the status code. A body that does not decode into the expected shape, or an
// ImageRecord missing one of id, filename, title or url, is KindInvalidResponse.
// A base URL that is not an absolute http(s) URL is KindInvalidURL. A call whose
// context is cancelled returns KindCancelled, which also matches context.Canceled:
//
//	images, err := client.FetchImages(ctx, base)
//	switch {
//	case colorbook.IsCancelled(err):
//		// caller went away, nothing to show
//	case errors.Is(err, colorbook.ErrServerError):
//		log.Printf("status %d", colorbook.StatusCode(err))
//	}
//
// Transport failures (connection refused, DNS) are returned as wrapped errors:
// "execute request: dial tcp ...".
//
// # Design Rationale
//
// No retries and no caching. The state containers own retry policy (a user
// repeats the action) and the server owns freshness.
package colorbook
