// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code classification

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "too_long",
			code:    errors.ErrPatchTooLong,
			message: "rpath does not fit",
			wantStr: "[PATCH_TOO_LONG] rpath does not fit",
		},
		{
			name:    "invalid_mapping",
			code:    errors.ErrInvalidMapping,
			message: "old prefix is empty",
			wantStr: "[INVALID_MAPPING] old prefix is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrPatchTooLong, "need %d bytes, have %d", 40, 32)
	if err.Message != "need 40 bytes, have 32" {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrNotWritable, "cannot open for writing")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[NOT_WRITABLE] cannot open for writing: permission denied"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrPatchTooLong, "too long").
		WithDetail("path", "/keg/bin/tool").
		WithDetail("capacity", 32)

	details := errors.GetErrorDetails(err)
	if details["path"] != "/keg/bin/tool" {
		t.Errorf("path detail = %v", details["path"])
	}
	if details["capacity"] != 32 {
		t.Errorf("capacity detail = %v", details["capacity"])
	}
	if errors.GetErrorDetails(stderrors.New("plain")) != nil {
		t.Error("GetErrorDetails() should be nil for a plain error")
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotWritable, "error 1")
	err2 := errors.New(errors.ErrNotWritable, "error 2")
	err3 := errors.New(errors.ErrPatchTooLong, "error 3")

	if !err1.Is(err2) {
		t.Error("Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("Is() should return false for different codes")
	}
	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should work with RelocError")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrNotELF, "x"), errors.ErrNotELF, true},
		{"different_code", errors.New(errors.ErrNotELF, "x"), errors.ErrInternal, false},
		{"fmt_wrapped", fmt.Errorf("ctx: %w", errors.New(errors.ErrPatchTooLong, "x")), errors.ErrPatchTooLong, true},
		{"standard_error", stderrors.New("standard error"), errors.ErrNotELF, false},
		{"nil_error", nil, errors.ErrNotELF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrPermissionRestore, "x")); got != errors.ErrPermissionRestore {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("standard")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want UNKNOWN", got)
	}
	if got := errors.GetErrorCode(nil); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(nil) = %v, want UNKNOWN", got)
	}
}

func TestIsFileLevel(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want bool
	}{
		{errors.ErrUnreadableFile, true},
		{errors.ErrPatchTooLong, true},
		{errors.ErrNotWritable, true},
		{errors.ErrMalformedELF, true},
		{errors.ErrPermissionRestore, false},
		{errors.ErrCancelled, false},
		{errors.ErrInvalidMapping, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := errors.IsFileLevel(errors.New(tt.code, "x")); got != tt.want {
				t.Errorf("IsFileLevel(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("read-only file system")
	writeErr := errors.Wrap(rootCause, errors.ErrNotWritable, "cannot write rpath")
	pkgErr := errors.Wrap(writeErr, errors.ErrInternal, "relocation failed")

	if !errors.IsErrorCode(pkgErr, errors.ErrInternal) {
		t.Error("Top level should have ErrInternal code")
	}

	var relocErr *errors.RelocError
	if stderrors.As(pkgErr.Unwrap(), &relocErr) {
		if relocErr.Code != errors.ErrNotWritable {
			t.Error("Middle error should have ErrNotWritable code")
		}
	} else {
		t.Error("Middle error should be a RelocError")
	}

	if !stderrors.Is(pkgErr, rootCause) {
		t.Error("Should find root cause with errors.Is")
	}
}
