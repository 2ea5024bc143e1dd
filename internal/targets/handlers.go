package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/grubapp/grub/internal/validate"
)

// HandleGetAll handles GET /api/targets
func HandleGetAll(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targets, err := service.AllTargets(r.Context())
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, targets)
	}
}

// HandleGet handles GET /api/targets/{day}
func HandleGet(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}

		target, err := service.GetTarget(r.Context(), day)
		if err != nil {
			if errors.Is(err, ErrTargetNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("No target set for day %d", day))
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, target)
	}
}

// HandleSet handles PUT /api/targets/{day}
func HandleSet(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}

		var req SetTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		target, err := service.SetTarget(r.Context(), day, req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, target)
	}
}

// HandleClear handles DELETE /api/targets/{day}
func HandleClear(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}

		cleared, err := service.ClearTarget(r.Context(), day)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ClearedResponse{Cleared: cleared})
	}
}

// HandleClearAll handles DELETE /api/targets
func HandleClearAll(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleared, err := service.ClearAll(r.Context())
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ClearedResponse{Cleared: cleared})
	}
}

func parseDay(w http.ResponseWriter, r *http.Request) (int64, bool) {
	day, err := strconv.ParseInt(r.PathValue("day"), 10, 64)
	if err != nil || day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "day must be between 0 (Monday) and 6 (Sunday)")
		return 0, false
	}
	return day, true
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
	log.Printf("ERROR targets: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
