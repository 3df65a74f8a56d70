package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"newsroom/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrGeneration, "articles", "generate", "model call failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"articles", "generate", "model call failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrDiscoverySource, "discovery", "list", "", nil), "discovery_source"},
		{services.Wrap(services.ErrTranscriptUnavailable, "transcripts", "fetch", "", nil), "transcript_unavailable"},
		{services.Wrap(services.ErrContextLoad, "articles", "load", "", nil), "context_load"},
		{services.Wrap(services.ErrGeneration, "summary", "call", "", context.DeadlineExceeded), "timeout"},
		{services.Wrap(services.ErrGeneration, "summary", "call", "", nil), "generation"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "timeout"},
		{services.Wrap(services.ErrValidation, "articles", "tone", "", nil), "validation"},
		{errors.New("disk full"), "transient"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
