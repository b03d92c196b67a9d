package parties

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, requireSession func(http.Handler) http.Handler) {
	r.Get("/get-all-parties", h.ListParties)
	r.Get("/parties/{party_id}", h.GetParty)
	r.Get("/get-all-candidates", h.ListCandidates)
	r.Get("/candidates/{candidate_id}", h.GetCandidate)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Post("/register-party", h.RegisterParty)
		r.Post("/update-party/{party_id}", h.UpdateParty)
		r.Post("/vote-party/{party_id}", h.VoteParty)
		r.Post("/register-candidate", h.RegisterCandidate)
		r.Post("/update-candidate/{candidate_id}", h.UpdateCandidate)
		r.Post("/vote-candidate/{candidate_id}", h.VoteCandidate)
	})
}
