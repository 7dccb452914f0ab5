// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err == nil {
		t.Fatal("New() returned nil")
	}
	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		wantNil bool
		wantMsg string
	}{
		{name: "wrap nil error", err: nil, message: "ctx", wantNil: true},
		{name: "wrap standard error", err: errors.New("boom"), message: "ctx", wantMsg: "ctx: boom"},
		{name: "wrap coded error", err: New("inner").WithCode(CodeTypeError), message: "outer", wantMsg: "outer: inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause")
			}
		})
	}
}

func TestWrap_PreservesCode(t *testing.T) {
	inner := New("inner").WithCode(CodeHandlerError).WithDetail("command", "echo")
	outer := Wrap(inner, "outer")

	if outer.Code() != CodeHandlerError {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeHandlerError)
	}
	if outer.Details()["command"] != "echo" {
		t.Errorf("details not copied: %v", outer.Details())
	}
}

func TestWrap_TruncatesDeepChains(t *testing.T) {
	var err error = New("root")
	for i := 0; i < MaxErrorChainDepth+2; i++ {
		err = Wrap(err, fmt.Sprintf("level %d", i))
	}
	if !strings.Contains(err.Error(), "chain truncated") {
		t.Errorf("expected truncated chain, got %q", err.Error())
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	sentinel := New("type error").WithCode(CodeTypeError)
	err := Wrap(New("cannot convert").WithCode(CodeTypeError), "binding")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(err, New("other").WithCode(CodeArityError)) {
		t.Error("errors.Is should not match a different code")
	}
	if errors.Is(New("a"), New("b")) {
		t.Error("CodeUnknown errors must not match each other")
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(New("inner").WithCode(CodeMissingParameter), "outer").WithCode(CodeNoMatchingUsage)

	if !HasCode(err, CodeNoMatchingUsage) {
		t.Error("HasCode should find the outer code")
	}
	if !HasCode(err, CodeMissingParameter) {
		t.Error("HasCode should find the inner code")
	}
	if HasCode(errors.New("plain"), CodeTypeError) {
		t.Error("HasCode should be false for plain errors")
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode should fall back to CodeUnknown")
	}
}

func TestWithCode_SetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeTypeError, SeverityLow},
		{CodeHandlerError, SeverityMedium},
		{CodeUnsupportedReturnType, SeverityHigh},
		{CodeInternal, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := New("x").WithCode(tt.code).Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeClassification(t *testing.T) {
	if !CodeTypeError.IsDispatch() || CodeTypeError.IsRegistration() {
		t.Error("TYPE_ERROR is a dispatch code")
	}
	if !CodeUnsupportedReturnType.IsRegistration() || CodeUnsupportedReturnType.IsDispatch() {
		t.Error("UNSUPPORTED_RETURN_TYPE is a registration code")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("bad").WithCode(CodeTypeError).WithOperation("bind").WithCause(errors.New("cause"))
	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("Marshal error: %v", mErr)
	}

	var decoded map[string]interface{}
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("Unmarshal error: %v", uErr)
	}
	if decoded["code"] != "TYPE_ERROR" {
		t.Errorf("code = %v, want TYPE_ERROR", decoded["code"])
	}
	if decoded["operation"] != "bind" {
		t.Errorf("operation = %v, want bind", decoded["operation"])
	}
	if decoded["cause"] != "cause" {
		t.Errorf("cause = %v, want cause", decoded["cause"])
	}
}

func TestString_SortsDetails(t *testing.T) {
	err := New("x").WithDetail("b", 2).WithDetail("a", 1)
	if !strings.Contains(err.String(), "Details: {a=1, b=2}") {
		t.Errorf("String() = %q", err.String())
	}
}
