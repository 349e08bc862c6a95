package control

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"warden/internal/domain"
	"warden/internal/session"
	"warden/internal/state"
)

type statusResponse struct {
	Phase           session.Phase  `json:"phase"`
	BlockingEnabled bool           `json:"blocking_enabled"`
	HasSelection    bool           `json:"has_selection"`
	Session         domain.Session `json:"session"`
}

func (h *Handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := state.SessionFromStore(ctx, h.Store)
	if err != nil {
		log.Error("Failed to load session state", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	enabled, err := h.Store.BlockingEnabled(ctx)
	if err != nil {
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	hasSelection, err := h.Store.HasStoredSelection(ctx)
	if err != nil {
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Phase:           h.Controller.Phase(),
		BlockingEnabled: enabled,
		HasSelection:    hasSelection,
		Session:         current,
	})
}

func (h *Handlers) requestAuthorization(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.RequestAuthorization(r.Context()); err != nil {
		if errors.Is(err, session.ErrNotAuthorized) {
			writeError(w, "Authorization denied", http.StatusForbidden)
			return
		}
		log.Error("Authorization request failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type enableRequest struct {
	ListID    *uint             `json:"list_id,omitempty"`
	Selection *domain.Selection `json:"selection,omitempty"`
}

func (h *Handlers) enableBlocking(w http.ResponseWriter, r *http.Request) {
	var payload enableRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	var err error
	if payload.Selection != nil && !payload.Selection.IsEmpty() {
		err = h.Controller.EnableBlockingWithSelection(r.Context(), *payload.Selection)
	} else {
		err = h.Controller.EnableBlocking(r.Context(), payload.ListID)
	}
	if err != nil {
		log.Error("Failed to enable blocking", "error", err)
		writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) disableBlocking(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.DisableBlocking(r.Context()); err != nil {
		log.Error("Failed to disable blocking", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type startMonitoringRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

func (h *Handlers) startMonitoring(w http.ResponseWriter, r *http.Request) {
	var payload startMonitoringRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if payload.DurationSeconds <= 0 {
		writeError(w, "duration_seconds must be positive", http.StatusBadRequest)
		return
	}

	started, err := h.Controller.StartMonitoring(r.Context(), time.Duration(payload.DurationSeconds)*time.Second)
	if err != nil {
		log.Error("Failed to start monitoring", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, started)
}

func (h *Handlers) stopMonitoring(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.StopMonitoring(r.Context()); err != nil {
		log.Error("Failed to stop monitoring", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) remainingTime(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.Controller.RemainingTime(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, "No active session", http.StatusNotFound)
			return
		}
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"remaining_seconds": int64(remaining / time.Second),
	})
}

type saveSelectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) saveSelectionAsList(w http.ResponseWriter, r *http.Request) {
	var payload saveSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	created, err := h.Controller.SaveSelectionAsList(r.Context(), payload.Name, payload.Description)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSelection) {
			writeError(w, "Selection has no apps or domains", http.StatusBadRequest)
			return
		}
		log.Error("Failed to save selection as list", "error", err)
		writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
