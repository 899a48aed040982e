package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrSessionExpired is returned when a 401 could not be recovered by the
// transparent refresh attempt. Stored credentials are cleared before it is
// returned; callers should route the user back to login.
var ErrSessionExpired = errors.New("api: session expired")

// APIError is a non-2xx response from the remote API with its decoded
// error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d: %s", e.Status, e.Message)
}

// ResourceUnavailableError is returned when every candidate endpoint for a
// logical query failed. It carries the last candidate's failure; earlier
// failures are discarded.
type ResourceUnavailableError struct {
	Query   string
	Status  int
	Message string
	Err     error
}

func (e *ResourceUnavailableError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: all %s endpoints failed: status %d: %s", e.Query, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api: all %s endpoints failed: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("api: all %s endpoints failed", e.Query)
}

func (e *ResourceUnavailableError) Unwrap() error { return e.Err }

// ErrorMessage extracts a user-facing message from an error payload. The
// backend is inconsistent: some handlers return {"errors": [...]}, others
// {"message": "..."}.
func ErrorMessage(body []byte, fallback string) string {
	if len(body) > 0 {
		if v := gjson.GetBytes(body, "errors.0"); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
		if v := gjson.GetBytes(body, "message"); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
		if msg := strings.TrimSpace(string(body)); msg != "" && !strings.HasPrefix(msg, "{") && !strings.HasPrefix(msg, "<") {
			return msg
		}
	}
	return fallback
}
