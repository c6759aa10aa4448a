package ipc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// CommandRequest is the body of POST /api/command.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse is returned for every command request.
type CommandResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Handler struct {
	exec Executor
	log  zerolog.Logger
}

func NewHandler(exec Executor, log zerolog.Logger) *Handler {
	return &Handler{exec: exec, log: log}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/command", h.handleCommand)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/properties", h.handleProperties)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONStatus(w, http.StatusBadRequest, CommandResponse{Status: "error", Error: "invalid request body"})
		return
	}

	if req.Command == "" {
		respondJSONStatus(w, http.StatusBadRequest, CommandResponse{Status: "error", Error: "command cannot be an empty string"})
		return
	}

	h.log.Debug().Str("command", req.Command).Msg("received IPC command")

	if err := h.exec.Execute(req.Command); err != nil {
		respondJSONStatus(w, http.StatusUnprocessableEntity, CommandResponse{Status: "error", Error: err.Error()})
		return
	}

	respondJSON(w, CommandResponse{Status: "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, h.exec.Status())
}

func (h *Handler) handleProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	props, err := h.exec.Properties()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, props)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	respondJSONStatus(w, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
