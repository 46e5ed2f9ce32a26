package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubAdapter scripts one outcome per call, repeating the last entry.
type stubAdapter struct {
	name    string
	script  []error // nil entry means success
	calls   int
	lastErr error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Invoke(ctx context.Context, prompt string, sc *Schema) (*Reply, error) {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	if err := s.script[idx]; err != nil {
		s.lastErr = err
		return nil, err
	}
	return &Reply{Backend: s.name, Fields: map[string]interface{}{"score": 7.0}}, nil
}

func callErr(name string, kind Kind) error {
	return &CallError{Backend: name, Kind: kind, Err: fmt.Errorf("scripted %s", kind)}
}

func TestChainFallsBackToFirstSuccess(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{callErr("a", KindQuota)}}
	b := &stubAdapter{name: "b", script: []error{callErr("b", KindTimeout)}}
	c := &stubAdapter{name: "c", script: []error{nil}}

	health := NewHealth()
	chain := NewChain(health, a, b, c)

	reply, err := chain.Run(context.Background(), "prompt", &Schema{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reply.Backend != "c" {
		t.Fatalf("expected reply from c, got %s", reply.Backend)
	}

	// Quota marks the backend unusable; a timeout does not.
	if health.Usable("a") {
		t.Fatalf("a should be unusable after quota failure")
	}
	if !health.Usable("b") {
		t.Fatalf("b should remain usable after timeout")
	}
}

func TestChainAuthFailureMarksUnusable(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{callErr("a", KindAuth)}}
	b := &stubAdapter{name: "b", script: []error{nil}}

	health := NewHealth()
	chain := NewChain(health, a, b)

	if _, err := chain.Run(context.Background(), "p", &Schema{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if health.Usable("a") {
		t.Fatalf("a should be unusable after auth failure")
	}

	// Second run must skip a entirely.
	if _, err := chain.Run(context.Background(), "p", &Schema{}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("a should not be retried after auth failure, got %d calls", a.calls)
	}
}

func TestChainAllFailed(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{callErr("a", KindTimeout)}}
	b := &stubAdapter{name: "b", script: []error{callErr("b", KindQuota)}}

	chain := NewChain(NewHealth(), a, b)

	_, err := chain.Run(context.Background(), "p", &Schema{})
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("expected ErrAllBackendsFailed, got %v", err)
	}
}

func TestChainEmptyOrAllPreMarked(t *testing.T) {
	chain := NewChain(NewHealth())
	if _, err := chain.Run(context.Background(), "p", &Schema{}); !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("empty chain: expected ErrAllBackendsFailed, got %v", err)
	}

	a := &stubAdapter{name: "a", script: []error{nil}}
	health := NewHealth()
	health.MarkUnusable("a", "quota exceeded")
	chain = NewChain(health, a)
	if _, err := chain.Run(context.Background(), "p", &Schema{}); !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("pre-marked chain: expected ErrAllBackendsFailed, got %v", err)
	}
	if a.calls != 0 {
		t.Fatalf("pre-marked adapter should not be called")
	}
}

func TestChainRetriesMalformedOnceThenMovesOn(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{
		callErr("a", KindMalformed),
		callErr("a", KindMalformed),
	}}
	b := &stubAdapter{name: "b", script: []error{nil}}

	health := NewHealth()
	chain := NewChain(health, a, b)

	reply, err := chain.Run(context.Background(), "p", &Schema{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.calls != 2 {
		t.Fatalf("expected exactly one retry on a, got %d calls", a.calls)
	}
	if reply.Backend != "b" {
		t.Fatalf("expected fallback to b, got %s", reply.Backend)
	}
	if !health.Usable("a") {
		t.Fatalf("malformed replies must not mark a backend unusable")
	}
}

func TestChainMalformedRetrySucceeds(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{callErr("a", KindMalformed), nil}}

	chain := NewChain(NewHealth(), a)

	reply, err := chain.Run(context.Background(), "p", &Schema{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reply.Backend != "a" || a.calls != 2 {
		t.Fatalf("expected retry success on a, backend=%s calls=%d", reply.Backend, a.calls)
	}
}

func TestChainHonorsCanceledContext(t *testing.T) {
	a := &stubAdapter{name: "a", script: []error{nil}}
	chain := NewChain(NewHealth(), a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := chain.Run(ctx, "p", &Schema{}); !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("expected ErrAllBackendsFailed on canceled context, got %v", err)
	}
	if a.calls != 0 {
		t.Fatalf("adapter should not run under canceled context")
	}
}
