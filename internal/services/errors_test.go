package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"marquee/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrNavigation, "resolve", "search", "load failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrNavigation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolve", "search", "load failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestErrorHint(t *testing.T) {
	timeout := fmt.Errorf("extract: %w", services.Wrap(services.ErrTimeout, "extract", "wait", "", nil))
	if hint := services.ErrorHint(timeout); !strings.Contains(hint, "wait_timeout_seconds") {
		t.Fatalf("unexpected timeout hint %q", hint)
	}
	storage := services.Wrap(services.ErrStorage, "store", "append", "", errors.New("disk full"))
	if hint := services.ErrorHint(storage); !strings.Contains(hint, "output_dir") {
		t.Fatalf("unexpected storage hint %q", hint)
	}
	if hint := services.ErrorHint(errors.New("plain")); hint != "check logs for details" {
		t.Fatalf("unexpected fallback hint %q", hint)
	}
	if hint := services.ErrorHint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil, got %q", hint)
	}
}
