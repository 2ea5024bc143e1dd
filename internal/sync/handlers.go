package sync

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlePull handles GET /api/sync?since=
func HandlePull(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, ok := parseSince(w, r)
		if !ok {
			return
		}

		payload, err := service.Pull(r.Context(), since)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

// HandlePush handles POST /api/sync?since=
func HandlePush(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, ok := parseSince(w, r)
		if !ok {
			return
		}

		var payload storage.SyncPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		delta, err := service.Push(r.Context(), since, &payload)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, delta)
	}
}

func parseSince(w http.ResponseWriter, r *http.Request) (*string, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return nil, true
	}
	if _, err := time.Parse(time.RFC3339, raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp '"+raw+"'. Use RFC 3339")
		return nil, false
	}
	return &raw, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Printf("ERROR sync: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
