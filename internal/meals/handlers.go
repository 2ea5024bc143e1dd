package meals

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/grubapp/grub/internal/validate"
)

// HandleLog handles POST /api/meals
func HandleLog(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LogMealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		entry, err := service.LogMeal(r.Context(), req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, ErrFoodNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("Food with id %d not found", req.FoodID))
				return
			}
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, entry)
	}
}

// HandleUpdate handles PUT /api/meals/{id}
func HandleUpdate(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid meal entry id")
			return
		}

		var req UpdateMealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		entry, err := service.UpdateEntry(r.Context(), id, req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, ErrEntryNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("Meal entry %d not found", id))
				return
			}
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// HandleDelete handles DELETE /api/meals/{id}
func HandleDelete(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid meal entry id")
			return
		}

		if err := service.DeleteEntry(r.Context(), id); err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("Meal entry %d not found", id))
				return
			}
			writeInternalError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
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
	log.Printf("ERROR meals: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
