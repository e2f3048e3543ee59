package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("row locked")
	err := Wrap(CodeStateConflict, cause, "reserve stock")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if got := err.Error(); got != "STATE_CONFLICT: reserve stock" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeAmountMismatch, "confirmed 19000, computed 19500")
	wrapped := fmt.Errorf("confirm payment: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeAmountMismatch {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !HasCode(wrapped, CodeAmountMismatch) {
		t.Fatal("HasCode should match through wrapping")
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
}

func TestMetadataStatuses(t *testing.T) {
	t.Parallel()

	cases := map[Code]int{
		CodeValidation:     http.StatusBadRequest,
		CodeForbidden:      http.StatusForbidden,
		CodeNotFound:       http.StatusNotFound,
		CodeStateConflict:  http.StatusUnprocessableEntity,
		CodeAmountMismatch: http.StatusConflict,
		CodeGateway:        http.StatusBadGateway,
		CodeDependency:     http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("code %s: expected %d, got %d", code, want, got)
		}
	}
}
