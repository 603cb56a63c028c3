package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the JSON envelope for every API reply.
type Response struct {
	Code  string       `json:"code,omitempty"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Code: "ok", Data: data})
}

// writeError renders err. HTTPError values keep their status and key;
// anything else becomes a 500 without leaking the message.
func writeError(w http.ResponseWriter, err error, message string) {
	httpErr := ErrInternalServerError
	var target HTTPError
	if errors.As(err, &target) {
		httpErr = target
	}
	if message == "" {
		message = http.StatusText(httpErr.Code)
	}

	writeJSON(w, httpErr.Code, Response{
		Code: httpErr.Key,
		Error: &ErrorDetail{
			Code:    httpErr.Key,
			Message: message,
		},
	})
}
