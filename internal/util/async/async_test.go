package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollect_AllSucceed(t *testing.T) {
	tasks := []Task[string]{
		{Name: "a", Func: func(context.Context) (string, error) { return "va", nil }},
		{Name: "b", Func: func(context.Context) (string, error) { return "vb", nil }},
		{Name: "c", Func: func(context.Context) (string, error) { return "vc", nil }},
	}

	results := Collect(context.Background(), tasks, 2)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for name, want := range map[string]string{"a": "va", "b": "vb", "c": "vc"} {
		res, ok := results[name]
		if !ok {
			t.Fatalf("missing result for %q", name)
		}
		if res.Err != nil {
			t.Errorf("%s: unexpected error: %v", name, res.Err)
		}
		if res.Value != want {
			t.Errorf("%s: expected %q, got %q", name, want, res.Value)
		}
	}
}

func TestCollect_FailureIsolated(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		{Name: "ok", Func: func(context.Context) (int, error) { return 42, nil }},
		{Name: "bad", Func: func(context.Context) (int, error) { return 0, boom }},
	}

	results := Collect(context.Background(), tasks, 0)
	if results["ok"].Err != nil || results["ok"].Value != 42 {
		t.Errorf("ok task affected by sibling failure: %+v", results["ok"])
	}
	if !errors.Is(results["bad"].Err, boom) {
		t.Errorf("expected boom, got %v", results["bad"].Err)
	}
}

func TestCollect_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32

	tasks := make([]Task[struct{}], 8)
	for i := range tasks {
		tasks[i] = Task[struct{}]{
			Name: string(rune('a' + i)),
			Func: func(context.Context) (struct{}, error) {
				n := running.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			},
		}
	}

	results := Collect(context.Background(), tasks, 2)
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	if peak.Load() > 2 {
		t.Errorf("concurrency limit exceeded: peak %d", peak.Load())
	}
}

func TestCollect_Empty(t *testing.T) {
	results := Collect[int](context.Background(), nil, 4)
	if len(results) != 0 {
		t.Errorf("expected empty result map, got %d entries", len(results))
	}
}
