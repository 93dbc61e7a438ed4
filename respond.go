package tastebase

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response body: {success, data?, message?}.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondSuccess(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondErr maps a core error onto the taxonomy's HTTP status.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case IsConflict(err):
		respondError(w, http.StatusConflict, "Restaurant already exists")
	case IsUpstream(err):
		s.logger.Error("upstream failure", "error", err)
		respondError(w, http.StatusInternalServerError, "Couldn't fetch weather info")
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
