package httpx

import (
	"encoding/json"
	"net/http"
)

const problemType = "about:blank"

// ProblemDetail is an RFC 7807 body. Errors carries per-field messages on 422.
type ProblemDetail struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// JSON writes data as application/json.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, "application/json", status, data)
}

// Problem writes a problem response titled title.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	write(w, "application/problem+json", status, ProblemDetail{Type: problemType, Title: title, Status: status, Detail: detail})
}

// ValidationProblem writes a 422 problem listing field errors.
func ValidationProblem(w http.ResponseWriter, detail string, fields map[string]string) {
	status := http.StatusUnprocessableEntity
	write(w, "application/problem+json", status, ProblemDetail{
		Type:   problemType,
		Title:  "Validation Failed",
		Status: status,
		Detail: detail,
		Errors: fields,
	})
}

func write(w http.ResponseWriter, contentType string, status int, body any) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
