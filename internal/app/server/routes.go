package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"warden/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Allow any origin
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Pass the request to the next handler
		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the config API surface. Only the token endpoint is open;
// everything else requires a service token.
func NewRouter() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc("POST /token", issueToken)

	router.Handle("GET /block-lists", auth.RequireService(http.HandlerFunc(getBlockLists)))
	router.Handle("POST /block-lists", auth.RequireService(http.HandlerFunc(createBlockList)))
	router.Handle("PUT /block-lists/{id}", auth.RequireService(http.HandlerFunc(updateBlockList)))
	router.Handle("DELETE /block-lists/{id}", auth.RequireService(http.HandlerFunc(deleteBlockList)))
	router.Handle("POST /block-lists/{id}/items", auth.RequireService(http.HandlerFunc(addBlockItems)))
	router.Handle("DELETE /block-lists/{id}/items/{itemId}", auth.RequireService(http.HandlerFunc(deleteBlockItem)))

	router.Handle("GET /schedules", auth.RequireService(http.HandlerFunc(getSchedules)))
	router.Handle("POST /schedules", auth.RequireService(http.HandlerFunc(createSchedule)))
	router.Handle("PUT /schedules/{id}", auth.RequireService(http.HandlerFunc(updateSchedule)))
	router.Handle("DELETE /schedules/{id}", auth.RequireService(http.HandlerFunc(deleteSchedule)))

	router.Handle("GET /app-categories", auth.RequireService(http.HandlerFunc(getAppCategories)))
	router.Handle("PUT /app-categories/{id}", auth.RequireService(http.HandlerFunc(updateAppCategory)))

	return enableCORS(router)
}

func OpenRoutes(port int) error {
	server := http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: NewRouter(),
	}

	log.Infof("Starting warden config API on port :%d", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}
