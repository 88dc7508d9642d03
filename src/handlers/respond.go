package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"ledger-rules/src/middleware"
	"ledger-rules/src/models"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy to a status code. fallback is the
// message sent for unexpected errors.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &nf):
		http.Error(w, nf.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrRuleDisabled):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// actor names the caller for the log: the token subject, or "anonymous" when
// auth is off.
func actor(r *http.Request) string {
	if subject := middleware.Subject(r.Context()); subject != "" {
		return subject
	}
	return "anonymous"
}
