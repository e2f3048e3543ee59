package responses

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestWriteErrorMapsCodesToStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "bad input"), 400, "VALIDATION_ERROR"},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "missing"), 404, "NOT_FOUND"},
		{"forbidden", pkgerrors.New(pkgerrors.CodeForbidden, "not yours"), 403, "FORBIDDEN"},
		{"state conflict", pkgerrors.New(pkgerrors.CodeStateConflict, "no stock"), 422, "STATE_CONFLICT"},
		{"amount mismatch", pkgerrors.New(pkgerrors.CodeAmountMismatch, "totals differ"), 409, "AMOUNT_MISMATCH"},
		{"gateway", pkgerrors.New(pkgerrors.CodeGateway, "gateway down"), 502, "GATEWAY_ERROR"},
		{"untyped", context.DeadlineExceeded, 500, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var envelope types.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "db password leaked"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message == "db password leaked" {
		t.Fatal("internal message must not leak")
	}
}
