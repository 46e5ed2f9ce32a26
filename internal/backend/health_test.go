package backend

import (
	"sync"
	"testing"
)

func TestHealthMarkAndReset(t *testing.T) {
	h := NewHealth()
	if !h.Usable("groq") {
		t.Fatalf("fresh board should report usable")
	}

	h.MarkUnusable("groq", "quota exceeded")
	if h.Usable("groq") {
		t.Fatalf("marked backend should be unusable")
	}

	snap := h.Snapshot([]string{"groq", "openai"})
	if snap["groq"].Usable || snap["groq"].Reason != "quota exceeded" {
		t.Fatalf("snapshot for groq: %+v", snap["groq"])
	}
	if !snap["openai"].Usable {
		t.Fatalf("openai should be usable in snapshot")
	}

	h.Reset()
	if !h.Usable("groq") {
		t.Fatalf("reset should clear marks")
	}
}

func TestHealthConcurrentMarks(t *testing.T) {
	h := NewHealth()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.MarkUnusable("deepseek", "quota exceeded")
			h.Usable("deepseek")
			h.Snapshot([]string{"deepseek"})
		}()
	}
	wg.Wait()

	if h.Usable("deepseek") {
		t.Fatalf("deepseek should be unusable after concurrent marks")
	}
}
