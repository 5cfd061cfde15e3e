package llm

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Error codes carried by *Error.
const (
	CodeCompletion = "COMPLETION_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeTimeout    = "TIMEOUT_ERROR"
)

var ErrMissingAPIKey = errors.New("llm: api key is required")

// Error is a failed completion. Status is the upstream HTTP status for
// COMPLETION_ERROR and a synthetic status otherwise.
type Error struct {
	Code    string
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s (status %d): %s", e.Code, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(code string, status int, message string, cause error) *Error {
	return &Error{Code: code, Status: status, Message: message, err: cause}
}

// classifyHTTPError turns a non-2xx upstream response into a COMPLETION_ERROR.
func classifyHTTPError(status int, body []byte) *Error {
	msg := truncate(string(body), 200)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return newError(CodeCompletion, status, msg, nil)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
