package foods

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/grubapp/grub/internal/validate"
)

// HandleCreate handles POST /api/foods
func HandleCreate(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateFoodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		food, err := service.CreateFood(r.Context(), req)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, food)
	}
}

// HandleSearch handles GET /api/foods/search?q=
func HandleSearch(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
			return
		}

		results, err := service.Search(r.Context(), query)
		if err != nil {
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

// HandleBarcode handles GET /api/foods/barcode/{code}
func HandleBarcode(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")

		food, err := service.LookupBarcode(r.Context(), code)
		if err != nil {
			if errors.Is(err, ErrFoodNotFound) {
				writeError(w, http.StatusNotFound,
					fmt.Sprintf("No product found for barcode '%s'", code))
				return
			}
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, food)
	}
}

// HandleRecent handles GET /api/foods/recent?limit=
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

		recent, err := service.RecentFoods(r.Context(), limit)
		if err != nil {
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, recent)
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
	log.Printf("ERROR foods: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
