package parties

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/httpx"
	"github.com/soma-campus/soma-backend/internal/utils"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("parties.http")}
}

func (h *Handler) ListParties(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListParties(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetParty(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "party_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.svc.Party(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) RegisterParty(w http.ResponseWriter, r *http.Request) {
	var in PartyInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.svc.RegisterParty(r.Context(), in)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Party registered successfully", "party": p})
}

func (h *Handler) UpdateParty(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "party_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	var in PartyInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.svc.UpdateParty(r.Context(), id, in)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Party updated successfully", "party": p})
}

func (h *Handler) VoteParty(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "party_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	p, err := h.svc.VoteParty(r.Context(), userID, id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Vote recorded", "party": p})
}

func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCandidates(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "candidate_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	c, err := h.svc.Candidate(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) RegisterCandidate(w http.ResponseWriter, r *http.Request) {
	var in CandidateInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	c, err := h.svc.RegisterCandidate(r.Context(), in)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Candidate registered successfully", "candidate": c})
}

func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "candidate_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	var in CandidateInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	c, err := h.svc.UpdateCandidate(r.Context(), id, in)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Candidate updated successfully", "candidate": c})
}

func (h *Handler) VoteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "candidate_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.svc.VoteCandidate(r.Context(), userID, id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Vote recorded", "candidate": c})
}
