package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/coloringbook/internal/colorbook"
	"github.com/five82/coloringbook/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 15 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 15 * time.Second},
		{"negative failures", -1, 15 * time.Second},
		{"one failure", 1, 30 * time.Second},
		{"two failures", 2, 60 * time.Second},
		{"three failures capped", 3, 2 * time.Minute}, // 120s equals the cap
		{"many failures capped", 10, 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 40; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestStartHealthMonitor_RecordsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","images_count":7}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := &state.Health{}
	StartHealthMonitor(ctx, health, colorbook.NewClient(), func() string { return srv.URL }, time.Hour, nil)

	waitFor(t, func() bool { return health.Snapshot().HasStatus })
	snap := health.Snapshot()
	if snap.Status.ImagesCount != 7 {
		t.Fatalf("ImagesCount = %d, want 7", snap.Status.ImagesCount)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStartHealthMonitor_CountsFailuresAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","images_count":1}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := &state.Health{}
	StartHealthMonitor(ctx, health, colorbook.NewClient(), func() string { return srv.URL }, 5*time.Millisecond, nil)

	waitFor(t, func() bool { return health.Snapshot().IsOffline() })
	if code := colorbook.StatusCode(health.Snapshot().LastError); code != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode(LastError) = %d, want %d", code, http.StatusServiceUnavailable)
	}

	healthy.Store(true)
	health.Reset() // drop the backoff so the next probe comes quickly
	waitFor(t, func() bool {
		snap := health.Snapshot()
		return snap.HasStatus && snap.ConsecutiveFailures == 0
	})
}

func TestStartHealthMonitor_StopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok","images_count":0}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	health := &state.Health{}
	StartHealthMonitor(ctx, health, colorbook.NewClient(), func() string { return srv.URL }, 5*time.Millisecond, nil)

	waitFor(t, func() bool { return calls.Load() >= 2 })
	cancel()
	time.Sleep(50 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("monitor kept probing after cancel: %d -> %d", after, calls.Load())
	}
}
