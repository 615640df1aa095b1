package chatbot

import (
	"encoding/json"
	"net/http"

	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes the chatbot over HTTP.
type Handler struct {
	responder *Responder
	logger    *logging.Logger
}

func NewHandler(responder *Responder, logger *logging.Logger) *Handler {
	if responder == nil {
		panic("chatbot: responder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{responder: responder, logger: logger}
}

type messagePayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Message answers a visitor message. The response carries the session
// id so the client can keep the conversation going.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	sessionID, answer, err := h.responder.Reply(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"answer":     answer,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}
