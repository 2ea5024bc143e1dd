package recipes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/grubapp/grub/internal/validate"
)

// HandleCreate handles POST /api/recipes
func HandleCreate(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRecipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := service.Create(r.Context(), req)
		if err != nil {
			writeRecipeError(w, err, 0)
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

// HandleList handles GET /api/recipes
func HandleList(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := service.List(r.Context())
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recipes)
	}
}

// HandleGet handles GET /api/recipes/{id}
func HandleGet(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		detail, err := service.Get(r.Context(), id)
		if err != nil {
			writeRecipeError(w, err, id)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// HandleUpdate handles PUT /api/recipes/{id}
func HandleUpdate(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req UpdateRecipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := service.Update(r.Context(), id, req)
		if err != nil {
			writeRecipeError(w, err, id)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// HandleDelete handles DELETE /api/recipes/{id}
func HandleDelete(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		if err := service.Delete(r.Context(), id); err != nil {
			writeRecipeError(w, err, id)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeRecipeError(w http.ResponseWriter, err error, id int64) {
	switch {
	case validate.IsError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Recipe %d not found", id))
	case errors.Is(err, ErrFoodNotFound):
		writeError(w, http.StatusBadRequest, "ingredient food not found")
	default:
		writeInternalError(w, err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return 0, false
	}
	return id, true
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
	log.Printf("ERROR recipes: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
