package handler

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/internhub/internal/domain"
)

func TestWriteDomainErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("listing: %w", domain.ErrNotFound), 404},
		{"conflict", domain.ErrAlreadyApplied, 409},
		{"forbidden", domain.ErrForbidden, 403},
		{"invalid credentials", domain.ErrInvalidCredentials, 401},
		{"bad transition", domain.ErrInvalidTransition, 422},
		{"validation", domain.Validationf("title is required"), 400},
		{"missing reason", domain.ErrReasonRequired, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestWriteDomainErrorHidesInternalFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, fmt.Errorf("query applications: %w", fmt.Errorf("pq: connection refused")))

	if rec.Code != 500 {
		t.Fatalf("expected 500 for an unrecognized error, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "internal server error" {
		t.Fatalf("expected the generic message, got %q", body.Error)
	}
}
