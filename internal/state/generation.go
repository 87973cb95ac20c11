package state

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/coloringbook/internal/colorbook"
)

// ErrEmptyPrompt is returned by GenerateImage when the prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is empty")

// GenerationSnapshot is a copy of the generate screen state.
type GenerationSnapshot struct {
	Prompt        string
	IsGenerating  bool
	ErrorMessage  string
	LastGenerated *colorbook.ImageRecord
	ActiveJob     string // id of the running job, empty when idle
}

// CanGenerate reports whether the prompt has non-whitespace content.
func (s GenerationSnapshot) CanGenerate() bool {
	return strings.TrimSpace(s.Prompt) != ""
}

// GenerationOptions configure a Generation.
type GenerationOptions struct {
	Context   context.Context
	Service   colorbook.ImageService
	Runner    Runner
	ServerURL string
	AppToken  string
	Logger    *slog.Logger

	// OnGenerated is called outside the lock after a job succeeds.
	OnGenerated func(colorbook.ImageRecord)
}

// Job is the handle for one generate call.
type Job struct {
	ID   string
	seq  uint64
	task Task
}

// Wait blocks until the job has finished and its result was applied or discarded.
func (j *Job) Wait() error {
	if j == nil || j.task == nil {
		return nil
	}
	return j.task.Wait()
}

// Generation owns at most one active generate call. Starting a new job cancels
// the previous one; a completion whose token is no longer current is dropped.
type Generation struct {
	ctx         context.Context
	svc         colorbook.ImageService
	runner      Runner
	appToken    string
	logger      *slog.Logger
	onGenerated func(colorbook.ImageRecord)

	mu        sync.Mutex
	serverURL string
	snapshot  GenerationSnapshot
	seq       uint64
	cancel    context.CancelFunc
}

// NewGeneration builds an idle Generation.
func NewGeneration(opts GenerationOptions) *Generation {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Generation{
		ctx:         ctx,
		svc:         opts.Service,
		runner:      opts.Runner,
		appToken:    strings.TrimSpace(opts.AppToken),
		logger:      loggerOrDefault(opts.Logger).With("component", "generation"),
		onGenerated: opts.OnGenerated,
		serverURL:   serverOrDefault(opts.ServerURL),
	}
}

// Snapshot returns a copy of the current state.
func (g *Generation) Snapshot() GenerationSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := g.snapshot
	if g.snapshot.LastGenerated != nil {
		img := *g.snapshot.LastGenerated
		snap.LastGenerated = &img
	}
	return snap
}

// SetServerURL changes the base URL for subsequent jobs.
func (g *Generation) SetServerURL(serverURL string) {
	g.mu.Lock()
	g.serverURL = serverOrDefault(serverURL)
	g.mu.Unlock()
}

// UpdatePrompt replaces the prompt text.
func (g *Generation) UpdatePrompt(prompt string) {
	g.mu.Lock()
	g.snapshot.Prompt = prompt
	g.mu.Unlock()
}

// CanGenerate reports whether GenerateImage would start a job.
func (g *Generation) CanGenerate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot.CanGenerate()
}

// GenerateImage starts a job for the current prompt, cancelling any job that
// is still running.
func (g *Generation) GenerateImage() (*Job, error) {
	g.mu.Lock()
	if !g.snapshot.CanGenerate() {
		g.mu.Unlock()
		return nil, ErrEmptyPrompt
	}
	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	job := &Job{ID: uuid.NewString(), seq: g.seq}
	ctx, cancel := context.WithCancel(g.ctx)
	g.cancel = cancel

	prompt := g.snapshot.Prompt
	base := g.serverURL
	g.snapshot.IsGenerating = true
	g.snapshot.ErrorMessage = ""
	g.snapshot.LastGenerated = nil
	g.snapshot.ActiveJob = job.ID
	g.mu.Unlock()

	g.logger.Info("generation started", "job", job.ID, "prompt", prompt)

	job.task = g.runner.Submit(func() {
		defer cancel()
		img, err := g.svc.GenerateImage(ctx, base, prompt, g.appToken)
		g.finish(job, img, err)
	})
	return job, nil
}

// CancelGeneration cancels the running job, if any, and marks the state idle
// immediately. A result that arrives afterwards is discarded.
func (g *Generation) CancelGeneration() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
	g.seq++
	g.logger.Info("generation cancelled", "job", g.snapshot.ActiveJob)
	g.snapshot.IsGenerating = false
	g.snapshot.ActiveJob = ""
}

func (g *Generation) finish(job *Job, img colorbook.ImageRecord, err error) {
	g.mu.Lock()
	if job.seq != g.seq {
		g.mu.Unlock()
		g.logger.Debug("discarding stale generation result", "job", job.ID, "error", err)
		return
	}
	g.cancel = nil
	g.snapshot.IsGenerating = false
	g.snapshot.ActiveJob = ""
	switch {
	case err == nil:
		g.snapshot.LastGenerated = &img
	case colorbook.IsCancelled(err):
		// Not an error from the user's point of view.
	default:
		g.snapshot.ErrorMessage = errorMessage(err, "Generation failed")
	}
	hook := g.onGenerated
	g.mu.Unlock()

	switch {
	case err == nil:
		g.logger.Info("generation finished", "job", job.ID, "image", img.ID)
		if hook != nil {
			hook(img)
		}
	case !colorbook.IsCancelled(err):
		g.logger.Warn("generation failed", "job", job.ID, "error", err)
	}
}
