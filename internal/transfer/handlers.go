package transfer

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/grubapp/grub/internal/storage"
	"github.com/grubapp/grub/internal/validate"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleExport handles GET /api/export
func HandleExport(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := service.Export(r.Context())
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

// HandleImport handles POST /api/import
func HandleImport(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data storage.ExportData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		summary, err := service.Import(r.Context(), &data)
		if err != nil {
			if validate.IsError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
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
	log.Printf("ERROR transfer: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
