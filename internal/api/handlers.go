package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
	"github.com/dmitrymomot/sigtoken/pkg/token"
)

type handler struct {
	svc       *token.Service
	log       *slog.Logger
	bodyLimit int64
}

type issueResponse struct {
	Token string `json:"token"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid   bool            `json:"valid"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

type whoamiResponse struct {
	Payload json.RawMessage `json:"payload"`
}

// issue signs the request body, which may be any JSON value.
func (h *handler) issue(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if !h.decodeBody(w, r, &payload) {
		return
	}

	tok, err := h.svc.Issue(payload)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to issue token", logger.Error(err))
		writeError(w, ErrUnprocessableEntity, err.Error())
		return
	}

	writeData(w, issueResponse{Token: tok})
}

// verify reports validity in the body. Bad tokens are a normal outcome
// here, not an HTTP error.
func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, ErrUnprocessableEntity, "token is required")
		return
	}

	result := token.Validate[json.RawMessage](h.svc, req.Token)
	if !result.IsValid {
		h.log.DebugContext(r.Context(), "token rejected", logger.Error(result.Err))
		writeData(w, verifyResponse{Reason: tokenErrorKey(result.Err)})
		return
	}

	writeData(w, verifyResponse{Valid: true, Payload: result.Result})
}

func (h *handler) whoami(w http.ResponseWriter, r *http.Request) {
	payload, _ := token.PayloadFromContext[json.RawMessage](r.Context())
	writeData(w, whoamiResponse{Payload: payload})
}

func (h *handler) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.log.DebugContext(r.Context(), "request not authorized", logger.Error(err))
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	writeError(w, ErrUnauthorized, tokenErrorKey(err))
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, ErrRequestEntityTooLarge, "")
			return false
		}
		writeError(w, ErrBadRequest, "request body must be valid JSON")
		return false
	}
	if dec.More() {
		writeError(w, ErrBadRequest, "request body must contain a single JSON value")
		return false
	}

	return true
}
