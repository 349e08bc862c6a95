package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"warden/internal/database"
	"warden/internal/domain"
)

func getSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := database.GetSchedules()
	if err != nil {
		log.Error("Failed to load schedules", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, schedules)
}

func createSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule domain.Schedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	created, err := database.CreateSchedule(schedule)
	if err != nil {
		// Validation failures carry the offending value in the message.
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func updateSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}

	var update domain.Schedule
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updated, err := database.UpdateSchedule(scheduleID, update)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrScheduleNotFound):
			writeError(w, "Schedule not found", http.StatusNotFound)
		default:
			writeError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func deleteSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}

	if err := database.DeleteSchedule(scheduleID); err != nil {
		if errors.Is(err, database.ErrScheduleNotFound) {
			writeError(w, "Schedule not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to delete schedule", "id", scheduleID, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
