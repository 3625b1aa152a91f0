package bse

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPipeParams(t *testing.T) {
	t.Run("joins fields with pipe", func(t *testing.T) {
		got := BuildPipeParams([]string{"NEW", "REF1", "", "10000"})
		want := "NEW|REF1||10000"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("empty fields keep their positions", func(t *testing.T) {
		fields := make([]string, OrderEntryFieldCount)
		fields[0] = "NEW"
		fields[22] = "token"

		got := BuildPipeParams(fields)
		parts := strings.Split(got, "|")
		if len(parts) != OrderEntryFieldCount {
			t.Fatalf("expected %d positions, got %d", OrderEntryFieldCount, len(parts))
		}
		if parts[22] != "token" {
			t.Errorf("position 22 should hold token, got %q", parts[22])
		}
	})
}

func TestParsePipeResponse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSuccess bool
		wantCode    string
		wantMessage string
		wantOrderNo string
	}{
		{
			name:        "successful order entry",
			raw:         "0|ORDER CONFIRMED|SB12345678",
			wantSuccess: true,
			wantCode:    "0",
			wantMessage: "ORDER CONFIRMED",
			wantOrderNo: "SB12345678",
		},
		{
			name:        "rejection with code and message",
			raw:         "1|INVALID SCHEME CODE",
			wantSuccess: false,
			wantCode:    "1",
			wantMessage: "INVALID SCHEME CODE",
		},
		{
			name:        "code only",
			raw:         "1",
			wantSuccess: false,
			wantCode:    "1",
		},
		{
			name:        "surrounding whitespace is trimmed",
			raw:         "  0 | ORDER CONFIRMED | SB99  ",
			wantSuccess: true,
			wantCode:    "0",
			wantMessage: "ORDER CONFIRMED",
			wantOrderNo: "SB99",
		},
		{
			name:        "trailing data fields preserved",
			raw:         "0|OK|SB1|extra1|extra2",
			wantSuccess: true,
			wantCode:    "0",
			wantMessage: "OK",
			wantOrderNo: "SB1",
		},
		{
			name:        "non-numeric code is a rejection",
			raw:         "FAILED|SOMETHING WENT WRONG",
			wantSuccess: false,
			wantCode:    "FAILED",
			wantMessage: "SOMETHING WENT WRONG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParsePipeResponse(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Success: expected %v, got %v", tt.wantSuccess, result.Success)
			}
			if result.Code != tt.wantCode {
				t.Errorf("Code: expected %q, got %q", tt.wantCode, result.Code)
			}
			if result.Message != tt.wantMessage {
				t.Errorf("Message: expected %q, got %q", tt.wantMessage, result.Message)
			}
			if result.OrderNumber() != tt.wantOrderNo {
				t.Errorf("OrderNumber: expected %q, got %q", tt.wantOrderNo, result.OrderNumber())
			}
		})
	}

	t.Run("empty response", func(t *testing.T) {
		if _, err := ParsePipeResponse(""); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
		if _, err := ParsePipeResponse("   "); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse for whitespace, got %v", err)
		}
	})

	t.Run("parse is idempotent", func(t *testing.T) {
		raw := "0|ORDER CONFIRMED|SB12345678"
		first, err := ParsePipeResponse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := ParsePipeResponse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Code != second.Code || first.Message != second.Message ||
			first.Success != second.Success || first.OrderNumber() != second.OrderNumber() {
			t.Error("repeated parse of the same input should give identical results")
		}
	})
}

func TestResultErr(t *testing.T) {
	t.Run("success gives nil", func(t *testing.T) {
		r := &Result{Success: true, Code: "0"}
		if err := r.Err(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("rejection carries code and message", func(t *testing.T) {
		r := &Result{Success: false, Code: "1", Message: "INVALID CLIENT"}
		err := r.Err()

		var rejection *RejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("expected *RejectionError, got %T", err)
		}
		if rejection.Code != "1" || rejection.Message != "INVALID CLIENT" {
			t.Errorf("unexpected rejection: %+v", rejection)
		}
	})
}
