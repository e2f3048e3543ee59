package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
)

type sampleBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"product_id":"7e0fdc7e-6fd1-4e3e-9a51-1f3e9f1c2ab3","quantity":2}`, false},
		{"missing quantity", `{"product_id":"7e0fdc7e-6fd1-4e3e-9a51-1f3e9f1c2ab3"}`, true},
		{"bad uuid", `{"product_id":"nope","quantity":2}`, true},
		{"unknown field", `{"product_id":"7e0fdc7e-6fd1-4e3e-9a51-1f3e9f1c2ab3","quantity":2,"extra":true}`, true},
		{"malformed json", `{"product_id":`, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.payload))
			var body sampleBody
			err := DecodeJSONBody(req, &body)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
					t.Fatalf("expected validation code, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if body.Quantity != 2 {
				t.Fatalf("unexpected decode: %+v", body)
			}
		})
	}
}
