package posts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, requireSession func(http.Handler) http.Handler) {
	r.Get("/get-all-posts", h.ListPosts)
	r.Get("/search-posts", h.SearchPosts)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Post("/create-post", h.CreatePost)
		r.Post("/upvote-post/{post_id}", h.Upvote)
		r.Post("/downvote-post/{post_id}", h.Downvote)
		r.Delete("/delete-post/{post_id}", h.DeletePost)
		r.Post("/comment-post/{post_id}", h.CommentPost)
	})
}
