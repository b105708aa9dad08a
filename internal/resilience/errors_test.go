package resilience

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient_ExplicitTransientError(t *testing.T) {
	err := NewTransientError(errors.New("server error"), 503)
	if !IsTransient(err) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(errors.New("overloaded"), 529)
	wrapped := fmt.Errorf("call failed: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransient_NilError(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}

func TestIsTransient_PermanentError(t *testing.T) {
	if IsTransient(errors.New("invalid request body")) {
		t.Error("plain error should not be transient")
	}
}

func TestIsTransient_StringHeuristics(t *testing.T) {
	cases := []string{
		"read tcp: connection reset by peer",
		"api error 429: rate limit exceeded",
		"Post \"https://api\": i/o timeout",
	}
	for _, msg := range cases {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("expected %q to be transient", msg)
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(NewTransientError(errors.New("slow down"), 429)) {
		t.Error("429 status should be rate limited")
	}
	if !IsRateLimited(errors.New("rate limit exceeded")) {
		t.Error("rate limit message should be rate limited")
	}
	if IsRateLimited(NewTransientError(errors.New("server error"), 503)) {
		t.Error("503 should not be rate limited")
	}
	if IsRateLimited(nil) {
		t.Error("nil should not be rate limited")
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be transient", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be permanent", code)
		}
	}
}
