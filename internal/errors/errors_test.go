package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}

	if got := Format(errors.New("disk full")); got != "Error: disk full" {
		t.Errorf("unexpected formatting: %q", got)
	}

	wrapped := fmt.Errorf("push failed: %w", errors.New("connection refused"))
	if got := Format(wrapped); got != "Error: push failed: connection refused" {
		t.Errorf("wrapped errors must render their full chain, got %q", got)
	}
}
