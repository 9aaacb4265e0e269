package database

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &NotFoundError{Collection: "accounts", ID: "a1"})
	if !IsNotFound(notFound) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound matched an unrelated error")
	}

	conflict := &ConflictError{Collection: "accounts", ID: "a1"}
	if !IsConflict(conflict) {
		t.Error("IsConflict failed on ConflictError")
	}

	validation := &ValidationError{Field: "email", Reason: "required"}
	if !IsValidation(validation) {
		t.Error("IsValidation failed on ValidationError")
	}

	unavailable := &UnavailableError{Provider: "mongodb", Err: errors.New("dial timeout")}
	if !IsUnavailable(unavailable) {
		t.Error("IsUnavailable failed on UnavailableError")
	}
	if !errors.Is(unavailable, unavailable) {
		t.Error("UnavailableError should match itself")
	}
}

func TestBatchError(t *testing.T) {
	batch := &BatchError{
		Applied: []int{0, 2},
		Failed: []*OperationError{
			{Index: 1, Collection: "accounts", ID: "a1", Err: &ConflictError{Collection: "accounts", ID: "a1"}},
		},
	}

	got, ok := AsBatchError(fmt.Errorf("batch failed: %w", batch))
	if !ok {
		t.Fatal("AsBatchError should see through wrapping")
	}
	if len(got.Applied) != 2 || len(got.Failed) != 1 {
		t.Fatalf("unexpected batch error contents: %+v", got)
	}
	if got.Failed[0].Index != 1 {
		t.Fatalf("failed index = %d, want 1", got.Failed[0].Index)
	}
}

func TestNotSupportedSentinel(t *testing.T) {
	err := fmt.Errorf("provider dynamodb: %w", ErrNotSupported)
	if !errors.Is(err, ErrNotSupported) {
		t.Fatal("wrapped ErrNotSupported should match the sentinel")
	}
}

func TestValidationError_Message(t *testing.T) {
	withField := &ValidationError{Field: "email", Reason: "required"}
	if withField.Error() != "validation failed on email: required" {
		t.Fatalf("unexpected message: %s", withField.Error())
	}
	bare := &ValidationError{Reason: "empty condition"}
	if bare.Error() != "validation failed: empty condition" {
		t.Fatalf("unexpected message: %s", bare.Error())
	}
}
