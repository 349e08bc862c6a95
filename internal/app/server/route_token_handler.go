package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"warden/internal/auth"
	"warden/internal/database"
)

type tokenRequest struct {
	ServiceID     string `json:"service_id"`
	ServiceSecret string `json:"service_secret"`
}

func issueToken(w http.ResponseWriter, r *http.Request) {
	var credentials tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	account, err := database.AuthenticateService(credentials.ServiceID, credentials.ServiceSecret)
	if err != nil {
		if errors.Is(err, database.ErrServiceAuthFailed) {
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		log.Error("Service authentication failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateServiceToken(account.ServiceID)
	if err != nil {
		writeError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
