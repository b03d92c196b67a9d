package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/httpx"
	"github.com/soma-campus/soma-backend/internal/middleware"
	"github.com/soma-campus/soma-backend/internal/utils"
)

type Handler struct {
	svc          *Service
	log          *zap.Logger
	cookieSecure bool
}

func NewHandler(svc *Service, cookieSecure bool, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("auth.http"), cookieSecure: cookieSecure}
}

// sessionCookie is SameSite=None over HTTPS so cross-site frontends keep it,
// and Lax for local development over plain HTTP.
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookieSecure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (h *Handler) CheckExistingUser(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	conflicts, err := h.svc.CheckAvailability(r.Context(), req.Username, req.Email)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if len(conflicts) > 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": conflicts})
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Username and email are available")
}

func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	taken, err := h.svc.CheckUsername(r.Context(), req.Username)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"exists": taken})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	if req.Resend {
		if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
			httpx.Fail(w, h.log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "OTP resent successfully")
		return
	}

	user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully. Please check your email for OTP verification.",
		"user_id": user.ID,
		"email":   user.Email,
	})
}

func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "OTP resent successfully")
}

func (h *Handler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	user, err := h.svc.VerifySignup(r.Context(), req.Email)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Signup verified",
		"user_id": user.ID,
	})
}

func (h *Handler) CleanupSignup(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if err := h.svc.CleanupSignup(r.Context(), req.Email); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Unverified user deleted successfully")
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if _, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, int(SessionTTL.Seconds())))
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"jwt":      session.Token,
		"username": session.User.Username,
		"message":  "Login successful",
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	httpx.WriteMessage(w, http.StatusOK, "Logout successful")
}

func (h *Handler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.VerifyLogin(r.Context(), middleware.TokenFromRequest(r))
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Login verified",
		"user":    user,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), h.userID(r))
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Password reset link sent to your email")
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req DetailsUpdate
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	user, err := h.svc.UpdateDetails(r.Context(), h.userID(r), req)
	h.writeProfile(w, "Details updated successfully", user, err)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdate
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), h.userID(r), req)
	h.writeProfile(w, "Profile updated successfully", user, err)
}

func (h *Handler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	var req PrivacyUpdate
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	user, err := h.svc.UpdatePrivacy(r.Context(), h.userID(r), req.Privacy)
	h.writeProfile(w, "Privacy settings updated successfully", user, err)
}

func (h *Handler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	var req PictureUpdate
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	user, err := h.svc.UpdateProfilePicture(r.Context(), h.userID(r), req.ProfilePicture)
	h.writeProfile(w, "Profile picture updated successfully", user, err)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListCandidateUsers(r.Context())
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) writeProfile(w http.ResponseWriter, msg string, user *User, err error) {
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": msg, "user": user})
}

func (h *Handler) userID(r *http.Request) string {
	id, _ := utils.GetUserIDFromContext(r.Context())
	return id
}
