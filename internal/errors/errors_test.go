package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSandboxError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *SandboxError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(ExitGeneralError, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(ExitGeneralError, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSandboxError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ExitGeneralError, "wrapped", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := New(ExitGeneralError, "no cause")
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name     string
		err      *SandboxError
		wantCode int
		wantMsg  string
	}{
		{"connection", ConnectionFailed("/var/run/docker.sock", cause), ExitConnectionError,
			"cannot connect to container engine at /var/run/docker.sock: boom"},
		{"protocol", ProtocolError("list containers", cause), ExitProtocolError,
			"list containers: unexpected engine response: boom"},
		{"rejected", RuntimeRejected("create container", cause), ExitRuntimeRejected,
			"create container rejected by container engine: boom"},
		{"truncated", StreamTruncated("attach", cause), ExitStreamTruncated,
			"attach: output stream truncated: boom"},
		{"config", ConfigError("bad config", cause), ExitConfigError, "bad config: boom"},
		{"not found", ContainerNotFound("myapp", "dev"), ExitContainerNotFound,
			"no dev container found for project myapp"},
		{"validation", ValidationError("missing token"), ExitGeneralError, "missing token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestCommandFailed(t *testing.T) {
	tests := []struct {
		status   int
		wantCode int
	}{
		{101, 101},
		{1, 1},
		{0, ExitGeneralError},
		{-1, ExitGeneralError},
		{300, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := CommandFailed("cargo build", tt.status)
			if err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", err.Code, tt.wantCode)
			}
			want := fmt.Sprintf("cargo build exited with status %d", tt.status)
			if err.Message != want {
				t.Errorf("Message = %q, want %q", err.Message, want)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "SandboxError",
			err:      ConnectionFailed("/sock", nil),
			wantCode: ExitConnectionError,
		},
		{
			name:     "wrapped SandboxError",
			err:      fmt.Errorf("outer: %w", StreamTruncated("attach", nil)),
			wantCode: ExitStreamTruncated,
		},
		{
			name:     "regular error",
			err:      fmt.Errorf("some error"),
			wantCode: ExitGeneralError,
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestAs(t *testing.T) {
	sandboxErr := RuntimeRejected("start container", nil)
	wrapped := fmt.Errorf("wrapped: %w", sandboxErr)

	var target *SandboxError
	if !As(wrapped, &target) {
		t.Fatal("As() should return true for wrapped SandboxError")
	}
	if target.Code != ExitRuntimeRejected {
		t.Errorf("target.Code = %d, want %d", target.Code, ExitRuntimeRejected)
	}

	if As(fmt.Errorf("regular error"), &target) {
		t.Error("As() should return false for non-SandboxError")
	}
}

func TestErrorChaining(t *testing.T) {
	root := fmt.Errorf("root cause")
	middle := Wrap(ExitConfigError, "config error", root)
	outer := fmt.Errorf("operation failed: %w", middle)

	if !errors.Is(outer, root) {
		t.Error("errors.Is should find root cause")
	}
	if !Is(outer, root) {
		t.Error("Is should find root cause")
	}
	if got := GetExitCode(outer); got != ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitConfigError)
	}
}

func TestJoin(t *testing.T) {
	first := RuntimeRejected("remove container", fmt.Errorf("conflict"))
	second := ConnectionFailed("/run/test.sock", fmt.Errorf("reset"))

	if Join() != nil || Join(nil, nil) != nil {
		t.Error("Join of no errors should be nil")
	}

	joined := Join(first, nil, second)
	if got := GetExitCode(joined); got != ExitRuntimeRejected {
		t.Errorf("GetExitCode() = %d, want first error's code %d", got, ExitRuntimeRejected)
	}
	if !Is(joined, second) {
		t.Error("joined error should match every member")
	}
	for _, want := range []string{"conflict", "reset"} {
		if !strings.Contains(joined.Error(), want) {
			t.Errorf("joined error %q should mention %q", joined.Error(), want)
		}
	}
}
