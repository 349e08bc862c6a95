// Package control is the localhost API of the interactive process. It fronts
// the session controller and the rule aggregator; it is bound to loopback and
// carries no authentication of its own.
package control

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"warden/internal/aggregator"
	"warden/internal/session"
	"warden/internal/state"
)

// Handlers bundles the collaborators the control routes need.
type Handlers struct {
	Controller *session.Controller
	Aggregator *aggregator.Aggregator
	Store      state.Store
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// NewRouter wires the control surface.
func NewRouter(h *Handlers) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /status", h.getStatus)
	router.HandleFunc("POST /authorization/request", h.requestAuthorization)

	router.HandleFunc("POST /blocking/enable", h.enableBlocking)
	router.HandleFunc("POST /blocking/disable", h.disableBlocking)

	router.HandleFunc("POST /monitoring/start", h.startMonitoring)
	router.HandleFunc("POST /monitoring/stop", h.stopMonitoring)
	router.HandleFunc("GET /monitoring/remaining", h.remainingTime)

	router.HandleFunc("POST /selection/save", h.saveSelectionAsList)

	router.HandleFunc("GET /rules", h.getActiveRules)
	router.HandleFunc("POST /rules/refresh", h.refreshAll)

	router.HandleFunc("GET /profiles", h.getProfiles)
	router.HandleFunc("PUT /profiles", h.setProfiles)
	router.HandleFunc("POST /profiles/{id}/activate", h.activateProfile)
	router.HandleFunc("POST /profiles/deactivate", h.deactivateProfiles)

	router.HandleFunc("GET /statistics", h.getStatistics)

	return router
}

// Serve binds the control API to loopback only.
func Serve(port int, h *Handlers) error {
	server := http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: NewRouter(h),
	}

	log.Infof("Starting warden control API on 127.0.0.1:%d", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server failed: %w", err)
	}
	return nil
}
