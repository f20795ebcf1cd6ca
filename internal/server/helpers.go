package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	codeEncodeFailed   = "encode_failed"
	codeInvalidJSON    = "invalid_json"
	codeMethodNotAllow = "method_not_allowed"

	// maxJSONRequest bounds JSON request bodies such as fund selection.
	maxJSONRequest = 64 << 10
)

// ErrorResponse is the body of every non-2xx API response. Line is set for
// ingestion format errors that can be traced to a CSV line.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// WriteJSON encodes data before writing any header, so a value that cannot
// be encoded turns into a 500 instead of a truncated 2xx body.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Error: "failed to encode response: " + err.Error(),
			Code:  codeEncodeFailed,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with a machine-readable code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod reports whether r uses one of methods. Otherwise it answers
// 405 with an Allow header listing them.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteErrorWithCode(w, http.StatusMethodNotAllowed, "Method not allowed", codeMethodNotAllow)
	return false
}

// DecodeJSON decodes a single JSON value from the request body into v.
// On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteErrorWithCode(w, http.StatusBadRequest, "Request body is required", codeInvalidJSON)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONRequest))
	if err := dec.Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), codeInvalidJSON)
		return false
	}
	if dec.More() {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: unexpected data after value", codeInvalidJSON)
		return false
	}
	return true
}

// PathParam returns the path segment between prefix and the last occurrence
// of suffix, so fund names that contain the suffix text still resolve.
// With an empty suffix it returns the segment up to the next slash.
//
//	PathParam(r, "/api/funds/", "/breakdowns") // /api/funds/{fund}/breakdowns
func PathParam(r *http.Request, prefix, suffix string) string {
	rest, ok := strings.CutPrefix(r.URL.Path, prefix)
	if !ok {
		return ""
	}
	if suffix == "" {
		before, _, _ := strings.Cut(rest, "/")
		return before
	}
	if idx := strings.LastIndex(rest, suffix); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
