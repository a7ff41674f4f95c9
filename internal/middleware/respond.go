package middleware

import (
	"encoding/json"
	"net/http"
)

// JSONError is the error envelope every failed API request returns.
type JSONError struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields,omitempty"`
	} `json:"error"`
}

// WriteJSONError writes an error response in the shared envelope.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var body JSONError
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Fields = fields

	_ = json.NewEncoder(w).Encode(body)
}
