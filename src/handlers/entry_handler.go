package handlers

import (
	"ledger-rules/src/entries"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// maxImportBatch bounds a single import request.
const maxImportBatch = 1000

func CreateEntry(service *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in entries.Input
		if err := decodeBody(r, &in, false); err != nil {
			log.Errorf("Failed to decode create entry request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		result, err := service.Create(r.Context(), in)
		if err != nil {
			log.Errorf("Failed to create entry: %v", err)
			writeError(w, err, "failed to create entry")
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func GetEntryByID(service *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, ok := idParam(r, "entry_id")
		if !ok {
			log.Errorf("Invalid entry id param: %s", chi.URLParam(r, "entry_id"))
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}
		entry, err := service.Get(r.Context(), entryID)
		if err != nil {
			log.Errorf("Entry id %d not found: %v", entryID, err)
			writeError(w, err, "failed to get entry")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func UpdateEntry(service *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, ok := idParam(r, "entry_id")
		if !ok {
			log.Errorf("Invalid entry id param: %s", chi.URLParam(r, "entry_id"))
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}
		var in entries.Input
		if err := decodeBody(r, &in, false); err != nil {
			log.Errorf("Failed to decode update entry request body for entry %d: %v", entryID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		result, err := service.Update(r.Context(), entryID, in)
		if err != nil {
			log.Errorf("Failed to update entry id %d: %v", entryID, err)
			writeError(w, err, "failed to update entry")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func ImportEntries(service *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Entries []entries.Input `json:"entries"`
		}
		if err := decodeBody(r, &req, false); err != nil {
			log.Errorf("Failed to decode import request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.Entries) > maxImportBatch {
			http.Error(w, "too many entries", http.StatusRequestEntityTooLarge)
			return
		}
		result, err := service.Import(r.Context(), req.Entries)
		if err != nil {
			log.Errorf("Import batch %s interrupted: %v", result.BatchID, err)
			writeError(w, err, "failed to import entries")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
