package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected string
	}{
		{"unauthenticated", Unauthenticated, "unauthenticated"},
		{"unauthorized", Unauthorized, "unauthorized"},
		{"not_found", NotFound, "not_found"},
		{"invalid_argument", InvalidArgument, "invalid_argument"},
		{"conflict", Conflict, "conflict"},
		{"store_unavailable", StoreUnavailable, "store_unavailable"},
		{"unknown", Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"direct", New(NotFound, "post 7 not found"), NotFound},
		{"wrapped once", fmt.Errorf("handler: %w", New(Conflict, "retry")), Conflict},
		{"wrap with cause", Wrap(StoreUnavailable, "query failed", base), StoreUnavailable},
		{"untyped", base, StoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(Conflict, "serialization failure", base)

	if !errors.Is(err, base) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if !IsKind(err, Conflict) {
		t.Error("IsKind(Conflict) should be true")
	}
	if IsKind(nil, Conflict) {
		t.Error("IsKind(nil) should be false")
	}
}
