package stats

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the dashboard endpoints. None of them need a session.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/get-user-stats", h.UserStats)
	r.Get("/get-party-stats", h.PartyStats)
	r.Get("/get-candidate-stats", h.CandidateStats)
	r.Post("/track-impressions", h.TrackImpression)
	r.Get("/get-impressions-stats", h.ImpressionStats)
}
