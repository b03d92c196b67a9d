package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/media"
)

func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (*User, error) {
	fields, err := u.columns()
	if err != nil {
		return nil, err
	}
	if name, ok := fields["username"].(string); ok {
		taken, err := s.users.UsernameTaken(ctx, name, userID)
		if err != nil {
			return nil, apperr.Internal("failed to check username", err)
		}
		if taken {
			return nil, apperr.Validation(msgUsernameExists)
		}
	}
	return s.apply(ctx, userID, fields)
}

func (s *Service) UpdateDetails(ctx context.Context, userID string, d DetailsUpdate) (*User, error) {
	return s.UpdateProfile(ctx, userID, ProfileUpdate{
		FullName:  d.FullName,
		FirstName: d.FirstName,
		LastName:  d.LastName,
	})
}

func (s *Service) UpdatePrivacy(ctx context.Context, userID string, p Privacy) (*User, error) {
	if !p.Valid() {
		return nil, apperr.Validation("Privacy must be Public or Private")
	}
	return s.apply(ctx, userID, map[string]any{"privacy": string(p)})
}

// UpdateProfilePicture uploads the picture when object storage is configured
// and otherwise stores the payload itself.
func (s *Service) UpdateProfilePicture(ctx context.Context, userID, payload string) (*User, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apperr.Validation("Profile picture data is required")
	}

	value := payload
	if s.pictures != nil {
		url, err := s.pictures.SaveProfilePicture(ctx, userID, payload)
		switch {
		case errors.Is(err, media.ErrNotBase64), errors.Is(err, media.ErrNotImage):
			return nil, apperr.Validation("Profile picture must be a base64 encoded image")
		case errors.Is(err, media.ErrPictureLarge):
			return nil, apperr.Validation("Profile picture is too large")
		case err != nil:
			return nil, apperr.Internal("failed to store profile picture", err)
		}
		value = url
	}
	return s.apply(ctx, userID, map[string]any{"profile_picture": value})
}

func (s *Service) ListCandidateUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.CandidateUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *Service) apply(ctx context.Context, userID string, fields map[string]any) (*User, error) {
	if err := s.users.UpdateUser(ctx, userID, fields); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, apperr.NotFound("User not found")
		case errors.Is(err, ErrDuplicate):
			return nil, apperr.Validation(msgUsernameExists)
		default:
			return nil, apperr.Internal("failed to update profile", err)
		}
	}
	return s.Me(ctx, userID)
}
