package stats

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/httpx"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("stats.http")}
}

func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	h.writeGrowth(w, r, "users", "User", h.svc.UserStats)
}

func (h *Handler) PartyStats(w http.ResponseWriter, r *http.Request) {
	h.writeGrowth(w, r, "parties", "Party", h.svc.PartyStats)
}

func (h *Handler) CandidateStats(w http.ResponseWriter, r *http.Request) {
	h.writeGrowth(w, r, "candidates", "Candidate", h.svc.CandidateStats)
}

// writeGrowth keeps the per-entity key names the dashboard reads, such as
// total_users and current_month_parties.
func (h *Handler) writeGrowth(w http.ResponseWriter, r *http.Request, noun, label string, fn func(context.Context) (*Growth, error)) {
	g, err := fn(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":                label + " statistics fetched successfully",
		"total_" + noun:          g.Total,
		"current_month_" + noun:  g.CurrentMonth,
		"previous_month_" + noun: g.PreviousMonth,
		"growth_percentage":      g.Percentage,
		"growth_direction":       g.Direction,
	})
}

func (h *Handler) TrackImpression(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.TrackImpression(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*TrackResult
	}{"Impression tracked successfully", res})
}

func (h *Handler) ImpressionStats(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ImpressionStats(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*ImpressionSummary
	}{"Impressions statistics fetched successfully", res})
}
