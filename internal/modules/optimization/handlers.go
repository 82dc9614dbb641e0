package optimization

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PositionSource lists the symbols currently held, used as the default
// optimization universe when the request names none.
type PositionSource interface {
	HeldSymbols() ([]string, error)
}

// Handler handles optimization HTTP requests
type Handler struct {
	service   *Service
	positions PositionSource
	log       zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(service *Service, positions PositionSource, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		positions: positions,
		log:       log.With().Str("handler", "optimization").Logger(),
	}
}

// Routes mounts the optimization endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/max-sharpe", h.HandleMaxSharpe)
	r.Get("/frontier", h.HandleFrontier)
}

// HandleMaxSharpe solves the max-Sharpe allocation. The request body may
// list symbols explicitly (an empty list optimizes over the held positions)
// and bound the history window with from/to dates.
func (h *Handler) HandleMaxSharpe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
		From    string   `json:"from"`
		To      string   `json:"to"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	window, err := parseWindow(req.From, req.To)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	symbols, err := h.resolveSymbols(req.Symbols)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.service.Optimize(r.Context(), symbols, window)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleFrontier computes the efficient frontier. Query parameters:
// strategy (grid|sampling), points, symbols (comma-separated), from, to.
func (h *Handler) HandleFrontier(w http.ResponseWriter, r *http.Request) {
	points := 0
	if param := r.URL.Query().Get("points"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 2 || parsed > 200 {
			h.writeError(w, http.StatusBadRequest, "points must be between 2 and 200")
			return
		}
		points = parsed
	}

	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var requested []string
	if param := r.URL.Query().Get("symbols"); param != "" {
		requested = splitSymbols(param)
	}
	symbols, err := h.resolveSymbols(requested)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	frontier, err := h.service.Frontier(r.Context(), symbols, r.URL.Query().Get("strategy"), points, window)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, frontier)
}

// parseWindow builds a history Window from optional YYYY-MM-DD bounds.
func parseWindow(from, to string) (Window, error) {
	var window Window
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return Window{}, fmt.Errorf("invalid from date %q, want YYYY-MM-DD", from)
		}
		window.From = parsed
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return Window{}, fmt.Errorf("invalid to date %q, want YYYY-MM-DD", to)
		}
		window.To = parsed
	}
	return window, nil
}

func (h *Handler) resolveSymbols(requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return h.positions.HeldSymbols()
}

func splitSymbols(param string) []string {
	var out []string
	for _, s := range strings.Split(param, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
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
