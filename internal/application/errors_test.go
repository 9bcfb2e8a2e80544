package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/room-reservations/internal/availability"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: invalid("date", availability.ErrInThePast), want: "validation"},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "wrapped conflict", err: fmt.Errorf("create: %w", ErrConflict), want: "conflict"},
		{name: "unauthenticated", err: ErrUnauthenticated, want: "unauthenticated"},
		{name: "expired", err: ErrSessionExpired, want: "session_expired"},
		{name: "credentials", err: ErrInvalidCredentials, want: "invalid_credentials"},
		{name: "store", err: ErrStoreUnavailable, want: "store_unavailable"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "other", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidationErrorUnwrapsFirstCause(t *testing.T) {
	vErr := &ValidationError{}
	vErr.add("startTime", availability.ErrMalformedTime)
	vErr.add("date", availability.ErrInThePast)

	if !errors.Is(vErr, availability.ErrMalformedInput) {
		t.Fatalf("expected malformed input in chain, got %v", vErr)
	}
	if errors.Is(vErr, availability.ErrInThePast) {
		t.Fatal("expected only the first cause to be unwrapped")
	}
	if len(vErr.FieldErrors) != 2 {
		t.Fatalf("expected both fields recorded, got %v", vErr.FieldErrors)
	}
	if !vErr.HasErrors() {
		t.Fatal("expected HasErrors to be true")
	}

	var empty *ValidationError
	if empty.HasErrors() || empty.Error() != "" {
		t.Fatal("expected nil validation error to be empty")
	}
}
