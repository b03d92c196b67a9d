package posts

import (
	"fmt"
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
	return &Handler{svc: svc, log: log.Named("posts.http")}
}

type listResponse struct {
	Message string `json:"message"`
	*Page
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	p, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Post created successfully", "post": p})
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.QueryInt(r, "page", 1)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", DefaultPageSize)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	res, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Message: "Posts fetched successfully", Page: res})
}

func (h *Handler) Upvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, Up, "Upvote")
}

func (h *Handler) Downvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, Down, "Downvote")
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, dir Direction, label string) {
	id, err := httpx.IDParam(r, "post_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	res, err := h.svc.Vote(r.Context(), userID, id, dir)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("%s %s successfully", label, res.Action),
		"post_id":   res.PostID,
		"action":    res.Action,
		"upvotes":   res.Upvotes,
		"downvotes": res.Downvotes,
	})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "post_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	res, err := h.svc.Delete(r.Context(), userID, id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Post deleted successfully", "cleanup_info": res})
}

func (h *Handler) CommentPost(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "post_id")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	var req commentRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, total, err := h.svc.AddComment(r.Context(), userID, id, req.Comment)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":        "Comment added successfully",
		"comment":        c,
		"post_id":        id,
		"total_comments": total,
	})
}

func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	out, err := h.svc.Search(r.Context(), q)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Found %d posts matching %q", len(out), q),
		"posts":   out,
		"count":   len(out),
		"query":   q,
	})
}
