package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIs(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "skin analysis not found")

	wrapped := fmt.Errorf("loading: %w", notFound)
	if !errors.Is(wrapped, notFound) {
		t.Fatal("wrapped error should match")
	}
	if !errors.Is(NewError(http.StatusNotFound, "skin analysis not found"), notFound) {
		t.Fatal("errors with the same code and message should match")
	}
	if errors.Is(NewError(http.StatusBadRequest, "skin analysis not found"), notFound) {
		t.Fatal("different codes should not match")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"response error", NewError(http.StatusForbidden, "nope"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("ctx: %w", NewError(http.StatusBadGateway, "upstream")), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}
