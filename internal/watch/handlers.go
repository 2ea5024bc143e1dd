package watch

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/grubapp/grub/internal/meals"
	"github.com/grubapp/grub/internal/validate"
)

// QuickLogRequest is the POST /api/watch/quick-log payload.
type QuickLogRequest struct {
	FoodID   int64   `json:"food_id"`
	ServingG float64 `json:"serving_g"`
	MealType string  `json:"meal_type"`
	Date     *string `json:"date"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleGlance handles GET /api/watch/glance and /api/watch/glance/{date}
func HandleGlance(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.PathValue("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		} else if err := validate.Date(date); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		glance, err := service.Glance(r.Context(), date)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, glance)
	}
}

// HandleRecent handles GET /api/watch/recent?limit=
func HandleRecent(service *Service) http.HandlerFunc {
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

		recent, err := service.Recent(r.Context(), limit)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recent)
	}
}

// HandleQuickLog handles POST /api/watch/quick-log
func HandleQuickLog(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuickLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		entry, err := service.QuickLog(r.Context(), req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, meals.ErrFoodNotFound) {
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Printf("ERROR watch: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
