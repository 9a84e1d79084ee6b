package utils

import (
	"errors"
	"testing"
)

func TestGenerateRandomID(t *testing.T) {
	a, err := GenerateRandomID()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(a) != 32 {
		t.Errorf("len: got %d, want 32", len(a))
	}
	b, _ := GenerateRandomID()
	if a == b {
		t.Error("expected distinct IDs")
	}
}

func TestAPIErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want int
	}{
		{"validation", ValidationError("bad", nil), 400},
		{"authentication", AuthenticationError("who"), 401},
		{"not found", NotFoundError("gone"), 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("Code: got %d, want %d", tt.err.Code, tt.want)
			}
			var target *APIError
			var err error = tt.err
			if !errors.As(err, &target) {
				t.Error("expected errors.As to match *APIError")
			}
		})
	}
}
