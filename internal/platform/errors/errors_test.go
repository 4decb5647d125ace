package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("apply: %w", New(CodeInsufficientBalance, "insufficient balance"))

	if !stderrors.Is(err, New(CodeInsufficientBalance, "")) {
		t.Fatal("expected wrapped error to match by code")
	}
	if stderrors.Is(err, New(CodeOverlappingRequest, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeInternal, "store failed", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "store failed" {
		t.Fatalf("message = %q, want %q", err.Error(), "store failed")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "domain", err: New(CodeNotFound, "missing"), want: CodeNotFound},
		{name: "wrapped domain", err: fmt.Errorf("x: %w", New(CodeForbidden, "no")), want: CodeForbidden},
		{name: "plain", err: stderrors.New("boom"), want: CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf = %q, want %q", got, tt.want)
			}
		})
	}
	if IsCode(nil, CodeInternal) {
		t.Fatal("nil error must not carry a code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeValidation:          http.StatusBadRequest,
		CodeAuthFailed:          http.StatusUnauthorized,
		CodeForbidden:           http.StatusForbidden,
		CodeNotFound:            http.StatusNotFound,
		CodeDuplicateIdentity:   http.StatusConflict,
		CodeInsufficientBalance: http.StatusUnprocessableEntity,
		CodeOverlappingRequest:  http.StatusUnprocessableEntity,
		CodeInternal:            http.StatusInternalServerError,
		Code("SOMETHING_ELSE"):  http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := code.HTTPStatus(); got != want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", code, got, want)
		}
	}
}
