package errors

import "strings"

// Code identifies a class of failure on the wire. Every error envelope a
// session emits carries exactly one code; clients branch on the code, not
// the message text.
type Code string

const (
	// CodeMalformedFrame covers undecodable input: bad base64, bad JPEG,
	// unsupported pixel layout, or an empty payload.
	CodeMalformedFrame Code = "MALFORMED_FRAME"

	// CodeInferenceFailed covers forward-pass and decode failures.
	CodeInferenceFailed Code = "INFERENCE_FAILED"

	// CodeOutOfMemory covers allocation failures while loading or running a
	// model, typically on a change_mode to a heavier profile.
	CodeOutOfMemory Code = "OUT_OF_MEMORY"

	// CodeModeChangeFailed covers change_mode requests naming an unknown
	// mode or failing to load the target model.
	CodeModeChangeFailed Code = "MODE_CHANGE_FAILED"

	// CodeVizUpdateFailed covers update_viz requests with unknown
	// visualization modes or out-of-range opacity.
	CodeVizUpdateFailed Code = "VIZ_UPDATE_FAILED"

	// CodeStatsFailed covers get_stats failures.
	CodeStatsFailed Code = "STATS_FAILED"

	// CodeEncodeFailed covers JPEG encoding failures on the reply path.
	CodeEncodeFailed Code = "ENCODE_FAILED"
)

type withCode struct {
	cause error
	code  Code
}

func (w *withCode) Error() string { return w.cause.Error() }
func (w *withCode) Cause() error  { return w.cause }
func (w *withCode) Unwrap() error { return w.cause }

// WithCode attaches a wire code to err. Attaching a code to nil returns nil.
// The outermost code wins when CodeOf inspects the chain, so handlers may
// re-classify an error from a lower layer.
func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	return &withCode{cause: err, code: code}
}

// CodeOf returns the wire code attached nearest to the surface of err.
// Errors without an explicit code classify as OUT_OF_MEMORY when they look
// like memory exhaustion, otherwise INFERENCE_FAILED, the catch-all for
// mid-session processing failures.
func CodeOf(err error) Code {
	var wc *withCode
	if As(err, &wc) {
		return wc.code
	}
	if IsOutOfMemory(err) {
		return CodeOutOfMemory
	}
	return CodeInferenceFailed
}

// IsOutOfMemory reports whether err looks like a memory exhaustion failure.
// Backends surface OOM conditions in runtime-specific message text, so this
// falls back to substring matching when no explicit code is attached.
func IsOutOfMemory(err error) bool {
	if err == nil {
		return false
	}
	var wc *withCode
	if As(err, &wc) && wc.code == CodeOutOfMemory {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "out of memory") ||
		strings.Contains(msg, "cannot allocate") ||
		strings.Contains(msg, "oom")
}
