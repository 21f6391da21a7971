package http

import (
	"net/http/httptest"
	"testing"

	apperrors "sharely/pkg/errors"
)

func TestExtractPaging(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantFrom int64
		wantSize int
		wantErr  bool
	}{
		{"defaults", "", 0, DefaultPageSize, false},
		{"explicit values", "from=20&size=5", 20, 5, false},
		{"from only", "from=3", 3, DefaultPageSize, false},
		{"size only", "size=50", 0, 50, false},
		{"zero from is valid", "from=0&size=1", 0, 1, false},
		{"negative from", "from=-1", 0, 0, true},
		{"zero size", "size=0", 0, 0, true},
		{"negative size", "size=-5", 0, 0, true},
		{"non-numeric from", "from=abc", 0, 0, true},
		{"non-numeric size", "size=ten", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/bookings?"+tt.query, nil)

			from, size, err := ExtractPaging(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for query %q, got from=%d size=%d", tt.query, from, size)
				}
				appErr, ok := err.(*apperrors.AppError)
				if !ok {
					t.Fatalf("expected AppError, got %T: %v", err, err)
				}
				if appErr.Code != apperrors.CodeInvalidInput {
					t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if from != tt.wantFrom || size != tt.wantSize {
				t.Errorf("ExtractPaging(%q) = (%d, %d), want (%d, %d)",
					tt.query, from, size, tt.wantFrom, tt.wantSize)
			}
		})
	}
}

func TestExtractUserID(t *testing.T) {
	r := httptest.NewRequest("GET", "/items", nil)
	if _, err := ExtractUserID(r); err == nil {
		t.Fatal("expected error for missing identity header")
	}

	r.Header.Set(UserIDHeader, "64a000000000000000000001")
	id, err := ExtractUserID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "64a000000000000000000001" {
		t.Errorf("expected header value passed through, got %q", id)
	}
}
