//go:build !integration

package usecase

import (
	"sync"
	"testing"

	"telegram-news-editor/internal/domain/model"
)

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()

	if _, ok := r.Peek(1); ok {
		t.Fatal("Peek must not create sessions")
	}
	s := r.Load(1)
	if s.OperatorID != 1 || s.Mode != model.ModeIdle {
		t.Fatalf("unexpected new session %+v", s)
	}

	s.Draft = "changed"
	if got := r.Load(1); got.Draft != "" {
		t.Fatal("Load must hand out copies")
	}
	r.Store(s)
	if got, ok := r.Peek(1); !ok || got.Draft != "changed" {
		t.Fatalf("Store not visible: %+v", got)
	}
}

func TestSessionRegistry_Concurrent(t *testing.T) {
	r := NewSessionRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s := r.Load(id % 5)
			s.Seed = "x"
			r.Store(s)
		}(int64(i))
	}
	wg.Wait()
	for id := int64(0); id < 5; id++ {
		if s, ok := r.Peek(id); !ok || s.Seed != "x" {
			t.Fatalf("session %d: %+v", id, s)
		}
	}
}
