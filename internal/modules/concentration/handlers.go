package concentration

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/internal/modules/portfolio"
)

// Handler handles concentration and diversification HTTP requests
type Handler struct {
	portfolio *portfolio.Service
	log       zerolog.Logger
}

// NewHandler creates a new concentration handler
func NewHandler(portfolioSvc *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		portfolio: portfolioSvc,
		log:       log.With().Str("handler", "concentration").Logger(),
	}
}

// Routes mounts the concentration endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleAnalyze)
	r.Get("/groups", h.HandleGroups)
	r.Get("/recommendations", h.HandleRecommendations)
}

// HandleAnalyze returns concentration metrics for the current portfolio.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.portfolio.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, Analyze(snapshot.Weights()))
}

// HandleGroups returns weight breakdowns by sector, region and asset type.
func (h *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.portfolio.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]GroupShare{
		"sectors":     BySector(snapshot),
		"regions":     ByRegion(snapshot),
		"asset_types": ByAssetType(snapshot),
	})
}

// HandleRecommendations returns rule-based diversification findings.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.portfolio.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics := Analyze(snapshot.Weights())
	recs := Recommend(snapshot, metrics, BySector(snapshot), ByRegion(snapshot))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics":         metrics,
		"recommendations": recs,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
