package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trainload/internal/fitdecode"
)

func TestDecodeAllRunsEveryJob(t *testing.T) {
	jobs := []DecodeJob{{Path: "a.fit"}, {Path: "b.fit"}, {Path: "c.fit"}}
	opened := make(map[string]bool)
	var mu sync.Mutex

	results, err := DecodeAll(context.Background(), jobs, 2, func(path string) (*fitdecode.Result, error) {
		mu.Lock()
		opened[path] = true
		mu.Unlock()
		return &fitdecode.Result{}, nil
	})
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, j := range jobs {
		if !opened[j.Path] {
			t.Fatalf("expected %s to have been opened", j.Path)
		}
	}
}

func TestDecodeAllAttachesPerFileErrors(t *testing.T) {
	jobs := []DecodeJob{{Path: "good.fit"}, {Path: "bad.fit"}}
	boom := errors.New("boom")

	results, err := DecodeAll(context.Background(), jobs, 2, func(path string) (*fitdecode.Result, error) {
		if path == "bad.fit" {
			return nil, boom
		}
		return &fitdecode.Result{}, nil
	})
	if err != nil {
		t.Fatalf("DecodeAll should not fail the whole batch on a per-file error: %v", err)
	}
	var sawErr bool
	for _, r := range results {
		if r.Path == "bad.fit" {
			if r.Err == nil {
				t.Fatal("expected bad.fit's error to be attached to its result")
			}
			sawErr = true
		}
	}
	if !sawErr {
		t.Fatal("expected to find bad.fit in the results")
	}
}

func TestDecodeAllRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []DecodeJob{{Path: "a.fit"}}
	_, err := DecodeAll(ctx, jobs, 1, func(path string) (*fitdecode.Result, error) {
		return &fitdecode.Result{}, nil
	})
	if err == nil {
		t.Fatal("expected cancellation to surface as an error")
	}
}
