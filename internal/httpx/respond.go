// Package httpx holds the JSON response helpers shared by every module handler.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/nota-backend/internal/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code"`
}

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Error maps err to its status and stable code. Internal causes are not
// rendered.
func Error(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	Respond(w, apperr.HTTPStatus(code), ErrorResponse{Error: apperr.MessageOf(err), Code: code})
}

// Fail writes an error that did not come from the store, such as a malformed
// body or a missing token.
func Fail(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	Respond(w, status, ErrorResponse{Error: msg, Code: code})
}

// Decode reads a JSON body into v. Errors are reported as InvalidInput.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidInput("malformed request body")
	}
	return nil
}
