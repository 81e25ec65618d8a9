package services_test

import (
	"errors"
	"strings"
	"testing"

	"hkxshift/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "dump", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "dump", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrPrecondition, "", "", "", nil)
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestCategoryMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"precondition", services.Wrap(services.ErrPrecondition, "preflight", "scale", "", nil), "precondition"},
		{"tool", services.Wrap(services.ErrExternalTool, "merge", "update", "", errors.New("exit 1")), "tool"},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{"plain", errors.New("disk full"), "io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Category(tt.err); got != tt.want {
				t.Fatalf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}
