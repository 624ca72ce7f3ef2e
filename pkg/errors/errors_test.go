package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(ErrCodeFileNotFound, "no %s in %s", "agent-mermaid.md", "./agent"),
			want: "FILE_NOT_FOUND: no agent-mermaid.md in ./agent",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeInvalidConfig, fmt.Errorf("line 3: bad indent"), "decode agent-config.yaml"),
			want: "INVALID_CONFIG: decode agent-config.yaml: line 3: bad indent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsStdlibChain(t *testing.T) {
	err := Wrap(ErrCodeWriteFailed, fs.ErrPermission, "write SYSTEM_PROMPT.md")

	if errors.Unwrap(err) != fs.ErrPermission {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), fs.ErrPermission)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is(err, fs.ErrPermission) = false, want true")
	}

	cancelled := Wrap(ErrCodeNestedAgent, context.Canceled, "compile nested agent nodes/research")
	if !errors.Is(cancelled, context.Canceled) {
		t.Error("errors.Is(err, context.Canceled) = false, want true")
	}
}

func TestIs(t *testing.T) {
	nested := Wrap(ErrCodeNestedAgent,
		Wrap(ErrCodeWriteFailed, fs.ErrPermission, "write nodes/research/SYSTEM_PROMPT.md"),
		"compile nested agent nodes/research")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNestingCycle, "a nests itself"), ErrCodeNestingCycle, true},
		{"other code", New(ErrCodeNestingCycle, "a nests itself"), ErrCodeNestedAgent, false},
		{"outer of chain", nested, ErrCodeNestedAgent, true},
		{"inner of chain", nested, ErrCodeWriteFailed, true},
		{"absent from chain", nested, ErrCodeInvalidInput, false},
		{"behind fmt wrap", fmt.Errorf("build: %w", nested), ErrCodeWriteFailed, true},
		{"plain error", fs.ErrNotExist, ErrCodeFileNotFound, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidFormat, "unknown format gif"), ErrCodeInvalidFormat},
		{"outermost wins", Wrap(ErrCodeNestedAgent, New(ErrCodeWriteFailed, "x"), "y"), ErrCodeNestedAgent},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "no code prefix",
			err:  New(ErrCodeFileNotFound, "./agent does not exist"),
			want: "./agent does not exist",
		},
		{
			name: "chain without codes",
			err:  Wrap(ErrCodeNestedAgent, Wrap(ErrCodeWriteFailed, errors.New("disk full"), "write out.md"), "compile nested agent sub"),
			want: "compile nested agent sub: write out.md: disk full",
		},
		{
			name: "plain error",
			err:  errors.New("plain error"),
			want: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
