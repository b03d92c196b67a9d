package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, requireSession func(http.Handler) http.Handler) {
	r.Post("/check-existing-user", h.CheckExistingUser)
	r.Post("/check-username", h.CheckUsername)
	r.Post("/signup", h.Signup)
	r.Post("/resend-otp", h.ResendOTP)
	r.Post("/verify-signup", h.VerifySignup)
	r.Post("/cleanup-signup", h.CleanupSignup)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/verify-login", h.VerifyLogin)
	r.Post("/reset-password-request", h.RequestPasswordReset)
	r.Post("/reset-password-confirm", h.ConfirmPasswordReset)
	r.Get("/get-all-users", h.ListUsers)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/user", h.Me)
		r.Post("/important-details", h.UpdateDetails)
		r.Post("/update-profile", h.UpdateProfile)
		r.Post("/update-privacy-settings", h.UpdatePrivacy)
		r.Post("/update-profile-picture", h.UpdateProfilePicture)
	})
}
