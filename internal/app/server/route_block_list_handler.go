package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"warden/internal/database"
	"warden/internal/domain"
)

func pathID(r *http.Request, name string) (uint, bool) {
	raw := r.PathValue(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func getBlockLists(w http.ResponseWriter, r *http.Request) {
	lists, err := database.GetBlockLists()
	if err != nil {
		log.Error("Failed to load block lists", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

func createBlockList(w http.ResponseWriter, r *http.Request) {
	var list domain.BlockList
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	created, err := database.CreateBlockList(list)
	if err != nil {
		if errors.Is(err, database.ErrBlockListNameRequired) || errors.Is(err, database.ErrBlockItemInvalidKind) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("Failed to create block list", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func updateBlockList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid list id", http.StatusBadRequest)
		return
	}

	var update domain.BlockList
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updated, err := database.UpdateBlockList(listID, update)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrBlockListNotFound):
			writeError(w, "Block list not found", http.StatusNotFound)
		case errors.Is(err, database.ErrBlockListNameRequired):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error("Failed to update block list", "id", listID, "error", err)
			writeError(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func deleteBlockList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid list id", http.StatusBadRequest)
		return
	}

	if err := database.DeleteBlockList(listID); err != nil {
		if errors.Is(err, database.ErrBlockListNotFound) {
			writeError(w, "Block list not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to delete block list", "id", listID, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func addBlockItems(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid list id", http.StatusBadRequest)
		return
	}

	var items []domain.BlockItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	created, err := database.AddBlockItems(listID, items)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrBlockListNotFound):
			writeError(w, "Block list not found", http.StatusNotFound)
		case errors.Is(err, database.ErrBlockItemInvalidKind):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error("Failed to add block items", "list", listID, "error", err)
			writeError(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func deleteBlockItem(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid list id", http.StatusBadRequest)
		return
	}
	itemID, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	if err := database.DeleteBlockItem(listID, itemID); err != nil {
		if errors.Is(err, database.ErrBlockItemNotFound) {
			writeError(w, "Block item not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to delete block item", "list", listID, "item", itemID, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
