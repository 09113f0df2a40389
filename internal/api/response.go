package api

import (
	"encoding/json"
	"net/http"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, domain.MessageResponse{Message: msg})
}
