package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/partsdesk/partpricer/internal/models"
	"github.com/partsdesk/partpricer/internal/scraper"
)

type Handlers struct {
	scraper *scraper.Service
	logger  *slog.Logger
}

func NewHandlers(scraper *scraper.Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: scraper,
		logger:  logger,
	}
}

// VariantsResponse lists the catalog's disambiguation choices for a query.
type VariantsResponse struct {
	Success  bool                   `json:"success"`
	Variants []models.VariantOption `json:"variants"`
	Error    string                 `json:"error,omitempty"`
}

// GetPricing runs a full price scrape for one vehicle+part query. This is a
// long call (page fetches are serialized with pauses); callers treat it as a
// background operation, not a request-path dependency.
func (h *Handlers) GetPricing(w http.ResponseWriter, r *http.Request) {
	var query models.PartQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := query.Validate(); len(errs) > 0 {
		h.respondError(w, http.StatusBadRequest, strings.Join(errs, "; "))
		return
	}

	outcome := h.scraper.ScrapePricing(r.Context(), query)
	if !outcome.Success && outcome.Error != "" {
		h.logger.Error("pricing scrape failed", "part", query.Part, "error", outcome.Error)
	}

	h.respondJSON(w, http.StatusOK, outcome)
}

// GetVariants exposes variant discovery without running a scrape, for
// operator UIs that let a human pick the right interchange.
func (h *Handlers) GetVariants(w http.ResponseWriter, r *http.Request) {
	var query models.PartQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query.VariantValue = ""

	if errs := query.Validate(); len(errs) > 0 {
		h.respondError(w, http.StatusBadRequest, strings.Join(errs, "; "))
		return
	}

	variants, err := h.scraper.ListVariants(r.Context(), query)
	if err != nil {
		h.logger.Error("variant listing failed", "part", query.Part, "error", err)
		h.respondJSON(w, http.StatusOK, VariantsResponse{Error: err.Error()})
		return
	}

	h.respondJSON(w, http.StatusOK, VariantsResponse{
		Success:  true,
		Variants: variants,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
