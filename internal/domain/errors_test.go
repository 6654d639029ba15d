package domain

import (
	"errors"
	"testing"
)

func TestSentinelKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "user id required", err: ErrUserIDRequired, kind: ErrInvalidArgument},
		{name: "item count", err: ErrItemCountRange, kind: ErrInvalidArgument},
		{name: "grade range", err: ErrGradeOutOfRange, kind: ErrInvalidArgument},
		{name: "catalog empty", err: ErrCatalogEmpty, kind: ErrNotFound},
		{name: "order not found", err: ErrOrderNotFound, kind: ErrNotFound},
		{name: "item not found", err: ErrOrderItemNotFound, kind: ErrNotFound},
		{name: "email in use", err: ErrEmailInUse, kind: ErrConflict},
		{name: "invalid credentials", err: ErrInvalidCredentials, kind: ErrUnauthenticated},
		{name: "token missing", err: ErrTokenMissing, kind: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Fatalf("expected %v to be of kind %v", tt.err, tt.kind)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	if StoreError("read", nil) != nil {
		t.Fatal("nil error must stay nil")
	}

	raw := errors.New("connection reset")
	wrapped := StoreError("read basket", raw)
	if !errors.Is(wrapped, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", wrapped)
	}
	if !errors.Is(wrapped, raw) {
		t.Fatalf("expected original error to be preserved, got %v", wrapped)
	}

	if got := StoreError("update orders", ErrOrderNotFound); got != ErrOrderNotFound {
		t.Fatalf("classified errors must pass through, got %v", got)
	}
}

func TestProviderError(t *testing.T) {
	raw := errors.New("timeout")
	wrapped := ProviderError("create user", raw)
	if !errors.Is(wrapped, ErrAuthProvider) {
		t.Fatalf("expected auth provider error, got %v", wrapped)
	}

	if got := ProviderError("sign in", ErrInvalidCredentials); got != ErrInvalidCredentials {
		t.Fatalf("classified errors must pass through, got %v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(errors.Join(ErrOrderItemNotFound, errors.New("context"))) {
		t.Fatal("expected joined item-not-found to be not found")
	}
	if IsNotFound(ErrUserIDRequired) {
		t.Fatal("invalid argument must not be not found")
	}
	if IsNotFound(nil) {
		t.Fatal("nil must not be not found")
	}
}
