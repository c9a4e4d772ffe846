package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags the three ways a call can fail.
type Kind int

const (
	// KindNone is returned by KindOf for nil or foreign errors.
	KindNone Kind = iota
	// KindServer means a response with a non-2xx status (or an undecodable body) arrived.
	KindServer
	// KindNetwork means the request was sent but no response came back.
	KindNetwork
	// KindClientSetup means the call failed before anything was sent.
	KindClientSetup
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindClientSetup:
		return "client_setup"
	default:
		return "none"
	}
}

// ServerError is a response that carried a status code the caller should see.
type ServerError struct {
	Method      string
	Path        string
	Status      int
	Body        string
	Message     string
	RateLimited bool
	RateLimit   *RateLimitInfo
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d %s) on %s %s: %s",
			e.Status, http.StatusText(e.Status), e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("server error: %d %s on %s %s", e.Status, http.StatusText(e.Status), e.Method, e.Path)
}

// NetworkError is a request that went out without a response coming back.
type NetworkError struct {
	Method  string
	Path    string
	Message string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network timeout on %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("network error on %s %s: %s", e.Method, e.Path, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ClientSetupError is a call that failed while the request was being built.
type ClientSetupError struct {
	Message string
	Err     error
}

func (e *ClientSetupError) Error() string {
	return "client setup error: " + e.Message
}

func (e *ClientSetupError) Unwrap() error {
	return e.Err
}

// KindOf returns the classification tag of err.
func KindOf(err error) Kind {
	var serverErr *ServerError
	var networkErr *NetworkError
	var setupErr *ClientSetupError

	switch {
	case errors.As(err, &serverErr):
		return KindServer
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.As(err, &setupErr):
		return KindClientSetup
	default:
		return KindNone
	}
}

// IsRateLimited reports whether err is a 429 from the remote service.
func IsRateLimited(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.RateLimited
}

// IsUnauthorized reports whether err is a 401 from the remote service.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusUnauthorized
}

// StatusCode extracts the HTTP status from a ServerError.
func StatusCode(err error) (int, bool) {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Status, true
	}
	return 0, false
}

// extractMessage pulls a human readable message out of an error body.
// FastAPI puts it in "detail", other services in "error" or "message".
func extractMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return strings.TrimSpace(string(body))
	}

	if detail := detailMessage(payload.Detail); detail != "" {
		return detail
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

// detailMessage handles both the plain string form and the validation
// error list form ([{"loc": [...], "msg": "..."}]).
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return ""
	}

	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}
		if len(item.Loc) > 0 {
			msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			continue
		}
		msgs = append(msgs, item.Msg)
	}
	return strings.Join(msgs, "; ")
}
