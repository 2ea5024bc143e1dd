package summary

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/grubapp/grub/internal/validate"
)

type AverageResponse struct {
	Days            int64   `json:"days"`
	AverageCalories float64 `json:"average_calories"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleDaily handles GET /api/summary/{date}
func HandleDaily(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.PathValue("date")
		if err := validate.Date(date); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		summary, err := service.Daily(r.Context(), date)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// HandleAverage handles GET /api/summary/average?days=
func HandleAverage(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := int64(7)
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "days must be a positive integer")
				return
			}
			days = parsed
		}

		avg, err := service.CalorieAverage(r.Context(), time.Now(), days)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AverageResponse{Days: days, AverageCalories: avg})
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
	log.Printf("ERROR summary: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
