package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAllBackendsFailed is returned by the chain when every adapter was
// exhausted or pre-marked unusable. Agents convert it into a failed
// partial score; it never propagates past the agent boundary.
var ErrAllBackendsFailed = errors.New("all inference backends failed")

// Kind classifies a provider failure and drives the fallback policy.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth: invalid or missing credential. The backend is unusable
	// for the rest of the process run.
	KindAuth
	// KindQuota: rate or budget limit hit. Unusable until reset.
	KindQuota
	// KindTimeout: no reply in time. Try the next backend, not this one.
	KindTimeout
	// KindMalformed: reply did not parse against the schema. Retried once
	// against the same backend, then treated as failure.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// CallError is a typed failure from one adapter invocation.
type CallError struct {
	Backend string
	Kind    Kind
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("backend %s: %s failure: %v", e.Backend, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// classify maps a raw provider error onto a failure kind by inspecting
// the message. Provider SDKs surface HTTP status only in error text.
func classify(backendName string, err error) *CallError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Backend: backendName, Kind: KindTimeout, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "authentication"):
		return &CallError{Backend: backendName, Kind: KindAuth, Err: err}
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") || strings.Contains(msg, "quota"):
		return &CallError{Backend: backendName, Kind: KindQuota, Err: err}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return &CallError{Backend: backendName, Kind: KindTimeout, Err: err}
	default:
		return &CallError{Backend: backendName, Kind: KindUnknown, Err: err}
	}
}

// malformed wraps a schema-validation failure.
func malformed(backendName string, err error) *CallError {
	return &CallError{Backend: backendName, Kind: KindMalformed, Err: err}
}
