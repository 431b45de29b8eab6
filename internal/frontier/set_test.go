package frontier_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
)

func TestSet_AddAndContains(t *testing.T) {
	s := frontier.NewSet()

	if !s.Add("https://example.com/a") {
		t.Error("first Add() = false, want true")
	}
	if s.Add("https://example.com/a") {
		t.Error("second Add() = true, want false")
	}
	if !s.Contains("https://example.com/a") {
		t.Error("Contains() = false after Add")
	}
	if s.Contains("https://example.com/b") {
		t.Error("Contains() = true for absent key")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSet_ConcurrentAddSameKey(t *testing.T) {
	s := frontier.NewSet()

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("https://example.com/contested") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("got %d winning Adds, want exactly 1", wins.Load())
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
