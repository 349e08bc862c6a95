package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"warden/internal/database"
	"warden/internal/domain"
)

func getAppCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := database.GetAppCategories()
	if err != nil {
		log.Error("Failed to load app categories", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func updateAppCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	var update domain.AppCategory
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updated, err := database.UpdateAppCategory(categoryID, update)
	if err != nil {
		if errors.Is(err, database.ErrAppCategoryNotFound) {
			writeError(w, "App category not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to update app category", "id", categoryID, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
