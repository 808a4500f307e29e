// Package httputil writes the JSON response envelope shared by every endpoint.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "invoiceguard/pkg/domain-errors"
)

// InternalErrorMessage replaces the description of unexpected failures.
const InternalErrorMessage = "An error occurred while processing the request"

// Response is the body of every API response. BlacklistedIBANs is null on
// failures.
type Response struct {
	Message          string   `json:"message"`
	BlacklistedIBANs []string `json:"blacklistedIbans"`
	Status           int      `json:"status"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResponse writes the envelope using its Status.
func WriteResponse(w http.ResponseWriter, resp Response) {
	WriteJSON(w, resp.Status, resp)
}

// WriteMessage writes an envelope with no IBAN list.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteResponse(w, Response{Message: message, Status: status})
}

// WriteError translates err into the envelope. Internal and configuration
// errors never expose their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := err.Error()
	if code == dErrors.CodeInternal || code == dErrors.CodeConfiguration {
		message = InternalErrorMessage
	}
	WriteMessage(w, status, message)
}
