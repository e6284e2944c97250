package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, expose: true},
		{code: CodeInvalidCredentials, status: http.StatusUnauthorized},
		{code: CodeInvalidRefreshToken, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden, expose: true},
		{code: CodePendingValidation, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound, expose: true},
		{code: CodeConflict, status: http.StatusConflict, expose: true},
		{code: CodeDependencyBlocked, status: http.StatusConflict, expose: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.ExposeMessage != tt.expose {
			t.Fatalf("code %s expected expose %v got %v", tt.code, tt.expose, meta.ExposeMessage)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s missing public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeInternal, cause, "load animal").WithDetails(map[string]string{"id": "x"})

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Details() == nil {
		t.Fatalf("expected details to be kept")
	}
	if got := err.Error(); got != "INTERNAL_ERROR: load animal: boom" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestCodeOfAndIs(t *testing.T) {
	typed := New(CodePendingValidation, "client account not validated")
	wrapped := fmt.Errorf("login: %w", typed)

	if CodeOf(wrapped) != CodePendingValidation {
		t.Fatalf("expected pending validation code, got %s", CodeOf(wrapped))
	}
	if !Is(wrapped, CodePendingValidation) {
		t.Fatalf("expected Is to match")
	}
	if Is(wrapped, CodeInvalidRefreshToken) {
		t.Fatalf("expected Is not to match a different code")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors should map to internal")
	}
}

func TestEnsure(t *testing.T) {
	if Ensure(nil, CodeInternal, "x") != nil {
		t.Fatalf("nil should stay nil")
	}
	typed := New(CodeNotFound, "animal not found")
	if got := Ensure(typed, CodeInternal, "x"); got != typed {
		t.Fatalf("typed errors should pass through")
	}
	got := Ensure(stdErrors.New("db down"), CodeDependency, "query")
	if CodeOf(got) != CodeDependency {
		t.Fatalf("expected dependency code, got %s", CodeOf(got))
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, fmt.Errorf("outer: %w", stdErrors.New("inner")), "top")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code in dump")
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(d.Chain))
	}
	if d.PGCode != "" {
		t.Fatalf("expected no pg code for plain errors")
	}
}
