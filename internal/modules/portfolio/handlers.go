package portfolio

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service  *Service
	importer *Importer
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, importer *Importer, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		importer: importer,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// Routes mounts the portfolio endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleGetPositions)
	r.Post("/positions", h.HandleAddPosition)
	r.Delete("/positions/{symbol}", h.HandleRemovePosition)
	r.Post("/refresh", h.HandleRefreshPrices)
	r.Get("/summary", h.HandleGetSummary)
	r.Post("/import", h.HandleImportCSV)
	r.Get("/export", h.HandleExportCSV)
}

// HandleGetPositions returns all positions with derived values.
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	weights := snapshot.Weights()
	type positionView struct {
		Position
		Amount       float64 `json:"amount"`
		Weight       float64 `json:"weight"`
		PeriodReturn float64 `json:"period_return"`
	}
	views := make([]positionView, 0, len(snapshot.Positions))
	for _, p := range snapshot.Positions {
		views = append(views, positionView{
			Position:     p,
			Amount:       p.Amount(),
			Weight:       weights[p.Symbol],
			PeriodReturn: p.PeriodReturn(),
		})
	}
	h.writeJSON(w, http.StatusOK, views)
}

// HandleAddPosition validates a symbol and adds a position at the current price.
func (h *Handler) HandleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol   string `json:"symbol"`
		Quantity int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	pos, err := h.service.AddPosition(r.Context(), req.Symbol, req.Quantity)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, pos)
}

// HandleRemovePosition deletes a position.
func (h *Handler) HandleRemovePosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := h.service.RemovePosition(symbol); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "symbol": symbol})
}

// HandleRefreshPrices refreshes last prices for all positions.
func (h *Handler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, failed, err := h.service.RefreshPrices(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"updated": updated, "failed": failed})
}

// HandleGetSummary returns headline figures and top/worst holdings.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	topN := 5
	if param := r.URL.Query().Get("top"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil {
			topN = parsed
		}
	}
	h.writeJSON(w, http.StatusOK, h.service.Summarize(snapshot, topN))
}

// HandleImportCSV imports positions from an uploaded CSV file. Accepts both a
// multipart "file" field and a raw CSV body.
func (h *Handler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	result, err := h.importer.ImportCSV(body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleExportCSV streams all positions as CSV.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.csv"`)
	if err := h.importer.ExportCSV(w); err != nil {
		h.log.Error().Err(err).Msg("CSV export failed")
	}
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
