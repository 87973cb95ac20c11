package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/coloringbook/internal/colorbook"
)

func newTestGeneration(t *testing.T, svc *fakeService, onGenerated func(colorbook.ImageRecord)) *Generation {
	t.Helper()
	return NewGeneration(GenerationOptions{
		Context:     context.Background(),
		Service:     svc,
		Runner:      newTestPool(t),
		ServerURL:   "http://test.local",
		AppToken:    "token",
		OnGenerated: onGenerated,
	})
}

func TestGenerationSnapshot_CanGenerate(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{"cute cat", true},
		{"  dragon  ", true},
	}
	for _, tt := range tests {
		got := GenerationSnapshot{Prompt: tt.prompt}.CanGenerate()
		assert.Equal(t, tt.want, got, "CanGenerate(%q)", tt.prompt)
	}
}

func TestGeneration_EmptyPromptIsRejected(t *testing.T) {
	g := newTestGeneration(t, &fakeService{}, nil)

	g.UpdatePrompt("   ")
	job, err := g.GenerateImage()

	assert.Nil(t, job)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.False(t, g.Snapshot().IsGenerating)
}

func TestGeneration_Success(t *testing.T) {
	var inserted []colorbook.ImageRecord
	var mu sync.Mutex
	svc := &fakeService{generate: func(_ context.Context, prompt string) (colorbook.ImageRecord, error) {
		r := record("new")
		r.Prompt = prompt
		return r, nil
	}}
	g := newTestGeneration(t, svc, func(r colorbook.ImageRecord) {
		mu.Lock()
		inserted = append(inserted, r)
		mu.Unlock()
	})

	g.UpdatePrompt("cute cat")
	job, err := g.GenerateImage()
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.NoError(t, job.Wait())

	snap := g.Snapshot()
	require.NotNil(t, snap.LastGenerated)
	assert.Equal(t, "new", snap.LastGenerated.ID)
	assert.Equal(t, "cute cat", snap.LastGenerated.Prompt)
	assert.False(t, snap.IsGenerating)
	assert.Empty(t, snap.ErrorMessage)
	assert.Empty(t, snap.ActiveJob)
	assert.Equal(t, "token", svc.lastToken)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, inserted, 1)
	assert.Equal(t, "new", inserted[0].ID)
}

func TestGeneration_FailureSetsMessage(t *testing.T) {
	svc := &fakeService{generate: func(context.Context, string) (colorbook.ImageRecord, error) {
		return colorbook.ImageRecord{}, colorbook.ServerError(401)
	}}
	g := newTestGeneration(t, svc, nil)

	g.UpdatePrompt("cat")
	job, err := g.GenerateImage()
	require.NoError(t, err)
	require.NoError(t, job.Wait())

	snap := g.Snapshot()
	assert.Equal(t, "Server error: 401", snap.ErrorMessage)
	assert.Nil(t, snap.LastGenerated)
	assert.False(t, snap.IsGenerating)
}

func TestGeneration_CancelDiscardsLateResult(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
	}{
		{"late success", nil},
		{"late failure", errors.New("server exploded")},
	} {
		t.Run(tt.name, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			svc := &fakeService{generate: func(context.Context, string) (colorbook.ImageRecord, error) {
				close(started)
				<-release // ignores ctx on purpose, like a slow server
				if tt.err != nil {
					return colorbook.ImageRecord{}, tt.err
				}
				return record("late"), nil
			}}
			var hookCalls atomic.Int32
			g := newTestGeneration(t, svc, func(colorbook.ImageRecord) { hookCalls.Add(1) })

			g.UpdatePrompt("cat")
			job, err := g.GenerateImage()
			require.NoError(t, err)
			<-started

			g.CancelGeneration()
			assert.False(t, g.Snapshot().IsGenerating, "cancel marks idle immediately")

			close(release)
			require.NoError(t, job.Wait())

			snap := g.Snapshot()
			assert.False(t, snap.IsGenerating)
			assert.Nil(t, snap.LastGenerated)
			assert.Empty(t, snap.ErrorMessage)
			assert.Zero(t, hookCalls.Load())
		})
	}
}

func TestGeneration_CancelPropagatesToContext(t *testing.T) {
	svc := &fakeService{generate: func(ctx context.Context, _ string) (colorbook.ImageRecord, error) {
		<-ctx.Done()
		return colorbook.ImageRecord{}, &colorbook.ServiceError{Kind: colorbook.KindCancelled, Err: ctx.Err()}
	}}
	g := newTestGeneration(t, svc, nil)

	g.UpdatePrompt("cat")
	job, err := g.GenerateImage()
	require.NoError(t, err)

	g.CancelGeneration()
	require.NoError(t, job.Wait())

	snap := g.Snapshot()
	assert.False(t, snap.IsGenerating)
	assert.Empty(t, snap.ErrorMessage)
}

func TestGeneration_CancelIsIdempotent(t *testing.T) {
	g := newTestGeneration(t, &fakeService{}, nil)

	g.CancelGeneration()
	g.CancelGeneration()

	snap := g.Snapshot()
	assert.False(t, snap.IsGenerating)
	assert.Empty(t, snap.ErrorMessage)
}

func TestGeneration_NewJobSupersedesRunningJob(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var mu sync.Mutex
	svc := &fakeService{generate: func(ctx context.Context, prompt string) (colorbook.ImageRecord, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return record("first"), nil
		}
		return record("second"), nil
	}}
	g := newTestGeneration(t, svc, nil)

	g.UpdatePrompt("one")
	first, err := g.GenerateImage()
	require.NoError(t, err)
	<-firstStarted

	g.UpdatePrompt("two")
	second, err := g.GenerateImage()
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.NoError(t, second.Wait())

	close(releaseFirst)
	require.NoError(t, first.Wait())

	snap := g.Snapshot()
	require.NotNil(t, snap.LastGenerated)
	assert.Equal(t, "second", snap.LastGenerated.ID)
	assert.False(t, snap.IsGenerating)
}
