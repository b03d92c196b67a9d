package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/soma-campus/soma-backend/internal/apperr"
)

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

func validatePassword(password string) error {
	if len(password) > MaxPasswordBytes {
		return apperr.Validation("Password must be at most 72 bytes")
	}
	return nil
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Structure string `json:"structure"`
	Bio       string `json:"bio"`
	Candidate bool   `json:"candidate"`
	Resend    bool   `json:"resend"`
}

func (r *SignupRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r *SignupRequest) validate() error {
	switch {
	case r.Username == "":
		return apperr.Validation("Username is required")
	case r.Email == "":
		return apperr.Validation("Email is required")
	case r.Password == "":
		return apperr.Validation("Password is required")
	case utf8.RuneCountInString(r.Username) > 30:
		return apperr.Validation("Username must be at most 30 characters")
	case utf8.RuneCountInString(r.Email) > 100:
		return apperr.Validation("Email must be at most 100 characters")
	case !strings.Contains(r.Email, "@"):
		return apperr.Validation("Enter a valid e-mail address")
	}
	return validatePassword(r.Password)
}

type EmailRequest struct {
	Email string `json:"email"`
}

type AvailabilityRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ProfileUpdate is a partial update. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username  *string  `json:"username"`
	FullName  *string  `json:"full_name"`
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Bio       *string  `json:"bio"`
	Structure *string  `json:"structure"`
	Privacy   *Privacy `json:"privacy_settings"`
	Facebook  *string  `json:"user_facebook"`
	Instagram *string  `json:"user_instagram"`
	XTwitter  *string  `json:"user_x_twitter"`
	Threads   *string  `json:"user_threads"`
	Youtube   *string  `json:"user_youtube"`
	Linkedin  *string  `json:"user_linkedin"`
	Tiktok    *string  `json:"user_tiktok"`
}

// DetailsUpdate carries the camelCase names the signup wizard posts.
type DetailsUpdate struct {
	FullName  *string `json:"fullName"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type PrivacyUpdate struct {
	Privacy Privacy `json:"privacy_settings"`
}

type PictureUpdate struct {
	ProfilePicture string `json:"profile_picture"`
}

// columns validates the update and maps it onto user columns.
func (u ProfileUpdate) columns() (map[string]any, error) {
	fields := map[string]any{}
	if u.Username != nil {
		name := strings.TrimSpace(*u.Username)
		if name == "" {
			return nil, apperr.Validation("Username cannot be empty")
		}
		if utf8.RuneCountInString(name) > 30 {
			return nil, apperr.Validation("Username must be at most 30 characters")
		}
		fields["username"] = name
	}
	if u.Privacy != nil {
		if !u.Privacy.Valid() {
			return nil, apperr.Validation("Privacy must be Public or Private")
		}
		fields["privacy"] = string(*u.Privacy)
	}

	text := []struct {
		column string
		value  *string
	}{
		{"full_name", u.FullName},
		{"first_name", u.FirstName},
		{"last_name", u.LastName},
		{"bio", u.Bio},
		{"structure", u.Structure},
		{"facebook", u.Facebook},
		{"instagram", u.Instagram},
		{"x_twitter", u.XTwitter},
		{"threads", u.Threads},
		{"youtube", u.Youtube},
		{"linkedin", u.Linkedin},
		{"tiktok", u.Tiktok},
	}
	for _, f := range text {
		if f.value != nil {
			fields[f.column] = strings.TrimSpace(*f.value)
		}
	}
	return fields, nil
}
