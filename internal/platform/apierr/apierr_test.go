package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsKeepsAPIErrors(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NotFound("gone"))
	got := As(wrapped)
	if got.Status != http.StatusNotFound || got.Code != CodeNotFound {
		t.Fatalf("As: unexpected %+v", got)
	}
	if got.Error() != "gone" {
		t.Fatalf("Error(): got=%q", got.Error())
	}
}

func TestAsMasksUnknownErrors(t *testing.T) {
	cause := errors.New("pq: connection refused")
	got := As(cause)
	if got.Status != http.StatusInternalServerError || got.Code != CodeStorage {
		t.Fatalf("As: unexpected %+v", got)
	}
	if got.Error() == cause.Error() {
		t.Fatalf("cause leaked into client message")
	}
	if !errors.Is(got, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
}

func TestAsNil(t *testing.T) {
	if As(nil) != nil {
		t.Fatalf("As(nil) should be nil")
	}
}
