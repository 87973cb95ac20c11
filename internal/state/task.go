package state

import (
	"context"

	"github.com/alitto/pond/v2"
)

// Task is a handle on a submitted state operation. Wait returns once the
// operation has applied its result to the owning state container.
type Task interface {
	Wait() error
}

// Runner executes state operations off the caller's goroutine. pond.Pool
// satisfies it.
type Runner interface {
	Submit(task func()) pond.Task
}

// NewPool returns the worker pool shared by the state containers. Work still
// queued when ctx is cancelled is dropped.
func NewPool(ctx context.Context, workers int) pond.Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return pond.NewPool(workers, pond.WithContext(ctx))
}

const defaultWorkers = 4

type completedTask struct{}

func (completedTask) Wait() error { return nil }

// done is returned by operations that finish synchronously.
var done Task = completedTask{}
