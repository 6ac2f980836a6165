package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/types"
)

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation keeps message",
			err:        pkgerrors.New(pkgerrors.CodeValidation, "title is required"),
			wantStatus: 400,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "title is required",
		},
		{
			name:       "state conflict keeps message",
			err:        pkgerrors.New(pkgerrors.CodeStateConflict, "event is closed"),
			wantStatus: 422,
			wantCode:   "STATE_CONFLICT",
			wantMsg:    "event is closed",
		},
		{
			name:       "internal hides message",
			err:        pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: boom"), "query failed"),
			wantStatus: 500,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
		{
			name:       "untyped becomes internal",
			err:        errors.New("plain failure"),
			wantStatus: 500,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var envelope types.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
			if envelope.Error.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", envelope.Error.Message, tc.wantMsg)
			}
		})
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeStateConflict, "gear is in use").
		WithDetails(map[string]any{"blocking": 3})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok || details["blocking"] != float64(3) {
		t.Fatalf("expected blocking detail, got %v", envelope.Error.Details)
	}
}

func TestWriteSuccessWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "live"})

	var envelope map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope["data"]["status"] != "live" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
