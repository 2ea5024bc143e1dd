package weights

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/grubapp/grub/internal/validate"
)

// HandleLog handles POST /api/weight
func HandleLog(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LogWeightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		entry, err := service.LogWeight(r.Context(), req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// HandleHistory handles GET /api/weight?start=&end=&limit=
func HandleHistory(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var limit int64
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		entries, err := service.History(r.Context(),
			r.URL.Query().Get("start"), r.URL.Query().Get("end"), limit)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// HandleGet handles GET /api/weight/{date}
func HandleGet(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.PathValue("date")

		entry, err := service.GetWeight(r.Context(), date)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, ErrWeightNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("No weight entry for %s", date))
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// HandleDelete handles DELETE /api/weight/entry/{id}
func HandleDelete(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid weight entry id")
			return
		}

		if err := service.DeleteEntry(r.Context(), id); err != nil {
			if errors.Is(err, ErrWeightNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("Weight entry %d not found", id))
				return
			}
			writeInternalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
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
	log.Printf("ERROR weights: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
