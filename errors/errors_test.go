package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf("error: %s %d", "test", 42)
	require.NotNil(t, err)
	assert.Equal(t, "error: test 42", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestIs(t *testing.T) {
	err1 := New("error 1")
	err2 := New("error 2")
	wrapped := Wrap(err1, "wrapped")

	assert.True(t, Is(wrapped, err1))
	assert.False(t, Is(wrapped, err2))
	assert.False(t, Is(nil, err1))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	// Format with stack trace
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithCode(nil, CodeInferenceFailed))
}

func TestSentinels(t *testing.T) {
	err := Wrap(ErrSessionClosed, "write pump")
	assert.True(t, IsSessionClosed(err))
	assert.False(t, IsSessionClosed(New("other")))
	assert.False(t, IsSessionClosed(nil))

	err = Wrapf(ErrFrameDropped, "in flight %d", 2)
	assert.True(t, IsFrameDropped(err))
	assert.False(t, IsFrameDropped(nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(New("bad jpeg"), CodeMalformedFrame)
	assert.Equal(t, CodeMalformedFrame, CodeOf(err))
	assert.Equal(t, "bad jpeg", err.Error())
}

func TestCodeOfWrapped(t *testing.T) {
	// Codes survive wrapping with additional context.
	err := WithCode(New("decode"), CodeEncodeFailed)
	err = Wrap(err, "reply path")
	assert.Equal(t, CodeEncodeFailed, CodeOf(err))
}

func TestCodeOfOutermostWins(t *testing.T) {
	inner := WithCode(New("inner"), CodeInferenceFailed)
	outer := WithCode(Wrap(inner, "reclassified"), CodeModeChangeFailed)
	assert.Equal(t, CodeModeChangeFailed, CodeOf(outer))
}

func TestCodeOfDefault(t *testing.T) {
	assert.Equal(t, CodeInferenceFailed, CodeOf(New("uncoded failure")))
}

func TestCodeOfMemoryClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"explicit code", WithCode(New("alloc"), CodeOutOfMemory), CodeOutOfMemory},
		{"cuda message", New("CUDA error: out of memory"), CodeOutOfMemory},
		{"mmap message", New("mmap: cannot allocate memory"), CodeOutOfMemory},
		{"oom message", New("worker hit OOM threshold"), CodeOutOfMemory},
		{"unrelated", New("tensor shape mismatch"), CodeInferenceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsOutOfMemory(t *testing.T) {
	assert.True(t, IsOutOfMemory(WithCode(New("x"), CodeOutOfMemory)))
	assert.True(t, IsOutOfMemory(New("cuda out of memory")))
	assert.False(t, IsOutOfMemory(New("shape mismatch")))
	assert.False(t, IsOutOfMemory(nil))
}

func ExampleWithCode() {
	err := WithCode(New("unknown mode: turbo"), CodeModeChangeFailed)
	fmt.Println(CodeOf(err))
	// Output: MODE_CHANGE_FAILED
}
