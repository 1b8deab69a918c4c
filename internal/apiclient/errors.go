package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotAuthenticated indicates no API credentials are attached to the request.
	ErrNotAuthenticated = errors.New("apiclient: not authenticated")
	// ErrSessionTimeout indicates the idle window elapsed and credentials were discarded.
	ErrSessionTimeout = errors.New("apiclient: session timed out")
	// ErrSessionExpired indicates the refresh token was rejected and credentials were discarded.
	ErrSessionExpired = errors.New("apiclient: session expired")
	// ErrInvalidCredentials indicates the login endpoint rejected the username or password.
	ErrInvalidCredentials = errors.New("apiclient: invalid credentials")
	// ErrNotFound mirrors a 404 from the API.
	ErrNotFound = errors.New("apiclient: resource not found")
	// ErrForbidden mirrors a 403 from the API.
	ErrForbidden = errors.New("apiclient: forbidden")
	// ErrValidation mirrors a 400 or 422 from the API.
	ErrValidation = errors.New("apiclient: validation failed")
)

// IsLoggedOut reports whether err means the user has to sign in again.
func IsLoggedOut(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrSessionTimeout) ||
		errors.Is(err, ErrSessionExpired)
}

// APIError describes a non-2xx response from the remote API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("apiclient: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is lets callers match an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// UserMessage returns a message suitable for a flash or form banner.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return "Please correct the highlighted fields."
	}
	return http.StatusText(e.Status)
}

// UserSafeMessage extracts a presentable message from any client error.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	switch {
	case errors.Is(err, ErrSessionTimeout):
		return "Your session has timed out. Please sign in again."
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrNotAuthenticated):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	}
	return "The server could not complete the request. Please try again."
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for field, msgs := range apiErr.Fields {
		out[field] = strings.Join(msgs, " ")
	}
	return out
}

// parseErrorBody understands the shapes REST backends commonly return:
// {"detail": "..."}, {"message": "..."}, {"error": "..."} and {"field": ["msg", ...]}.
func parseErrorBody(body []byte) (string, map[string][]string) {
	if len(body) == 0 {
		return "", nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return "", nil
		}
		return text, nil
	}
	var message string
	for _, key := range []string{"detail", "message", "error"} {
		if value, ok := raw[key]; ok {
			var s string
			if err := json.Unmarshal(value, &s); err == nil && s != "" {
				message = s
				break
			}
		}
	}
	fields := make(map[string][]string)
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch key {
		case "detail", "message", "error", "code":
			continue
		}
		var list []string
		if err := json.Unmarshal(raw[key], &list); err == nil && len(list) > 0 {
			fields[key] = list
			continue
		}
		var single string
		if err := json.Unmarshal(raw[key], &single); err == nil && single != "" {
			fields[key] = []string{single}
		}
	}
	if nonField, ok := fields["non_field_errors"]; ok {
		if message == "" {
			message = strings.Join(nonField, " ")
		}
		delete(fields, "non_field_errors")
	}
	if len(fields) == 0 {
		fields = nil
	}
	return message, fields
}
