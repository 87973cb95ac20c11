// Package state holds the per-screen state containers of the coloring book
// client: Gallery, Generation and Detail, plus the Health record fed by the
// background probe.
//
// # Overview
//
// Each container owns a mutex-guarded snapshot. The UI reads copies through
// Snapshot() on its own schedule and calls operations in response to keys.
// Operations flip their "started" flags synchronously, then hand the network
// call to a shared worker pool and return a Task:
//
//	UI goroutine                     pool worker
//	┌──────────────────┐            ┌──────────────────────┐
//	│ g.LoadImages()   │──Submit───→│ svc.FetchImages(ctx) │
//	│  IsLoading=true  │            │      ↓               │
//	│ g.Snapshot()     │←──(mutex)──│ apply result         │
//	└──────────────────┘            └──────────────────────┘
//
// Task.Wait returns once the result has been applied, which is how tests and
// the UI's command loop synchronize with a running call.
//
// # Error Semantics
//
// Errors never escape a container as values. They become a display message
// (Gallery.ErrorMessage, Generation.ErrorMessage) or a flag (Detail.LoadError).
// A failed load keeps the previously shown data. Cancellation is not an error:
// the state settles and no message is recorded.
//
// # Ordering
//
// Gallery calls are not serialized; when two loads overlap, the one that
// finishes last wins. Generation tags each job with a sequence number and
// drops completions that are no longer current, so a cancelled or superseded
// job can never overwrite newer state.
//
// # Usage Example
//
//	pool := state.NewPool(ctx, 4)
//	defer pool.StopAndWait()
//
//	gallery := state.NewGallery(state.GalleryOptions{
//		Context: ctx, Service: client, Runner: pool, ServerURL: url,
//	})
//	_ = gallery.LoadImages().Wait()
//	for _, img := range gallery.Snapshot().Images {
//		fmt.Println(img.Title)
//	}
//
// The Health zero value is ready to use.
package state
