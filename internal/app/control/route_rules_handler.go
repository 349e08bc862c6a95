package control

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"warden/internal/aggregator"
	"warden/internal/domain"
)

func (h *Handlers) getActiveRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Aggregator.ActiveRules(r.Context(), time.Now())
	if err != nil {
		log.Error("Failed to compute active rules", "error", err)
		writeError(w, "Upstream unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}

func (h *Handlers) refreshAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Aggregator.RefreshAll(r.Context()); err != nil {
		log.Error("Refresh failed", "error", err)
		writeError(w, "Upstream unavailable", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Aggregator.Profiles(r.Context())
	if err != nil {
		log.Error("Failed to load profiles", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if profiles == nil {
		profiles = []domain.BlockingProfile{}
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handlers) setProfiles(w http.ResponseWriter, r *http.Request) {
	var profiles []domain.BlockingProfile
	if err := json.NewDecoder(r.Body).Decode(&profiles); err != nil {
		writeError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	for _, profile := range profiles {
		if profile.ID == "" {
			writeError(w, "Profile id is required", http.StatusBadRequest)
			return
		}
	}

	if err := h.Aggregator.SetProfiles(r.Context(), profiles); err != nil {
		log.Error("Failed to store profiles", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) activateProfile(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("id")
	if profileID == "" {
		writeError(w, "Invalid profile id", http.StatusBadRequest)
		return
	}

	if err := h.Aggregator.ActivateProfile(r.Context(), profileID); err != nil {
		if errors.Is(err, aggregator.ErrProfileNotFound) {
			writeError(w, "Profile not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to activate profile", "profile", profileID, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) deactivateProfiles(w http.ResponseWriter, r *http.Request) {
	if err := h.Aggregator.DeactivateProfiles(r.Context()); err != nil {
		log.Error("Failed to deactivate profiles", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.LoadStatistics(r.Context())
	if err != nil {
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
