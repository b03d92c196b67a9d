package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/mailer"
)

const (
	// SignupWindow bounds both signup verification and cleanup of an
	// unverified account.
	SignupWindow = 5 * time.Minute
	// LoginFreshness is how recent last_login must be for verify-login.
	LoginFreshness = 5 * time.Minute
)

const (
	msgUsernameExists = "Username already exists"
	msgEmailExists    = "E-mail already exists"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	CandidateUsers(ctx context.Context) ([]User, error)
}

// PictureStore keeps uploaded profile pictures outside the database.
type PictureStore interface {
	SaveProfilePicture(ctx context.Context, userID, payload string) (string, error)
}

type Service struct {
	users       UserStore
	ledger      *Ledger
	tokens      *Tokens
	sender      mailer.Sender
	pictures    PictureStore
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

// NewService wires the signup workflow. pictures may be nil, in which case
// profile pictures stay inline on the user row.
func NewService(users UserStore, ledger *Ledger, tokens *Tokens, sender mailer.Sender, pictures PictureStore, frontendURL string, log *zap.Logger) *Service {
	return &Service{
		users:       users,
		ledger:      ledger,
		tokens:      tokens,
		sender:      sender,
		pictures:    pictures,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		log:         log.Named("auth"),
		now:         time.Now,
	}
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

func (s *Service) CheckAvailability(ctx context.Context, username, email string) ([]string, error) {
	var conflicts []string
	if username = strings.TrimSpace(username); username != "" {
		taken, err := s.users.UsernameTaken(ctx, username, "")
		if err != nil {
			return nil, apperr.Internal("failed to check username", err)
		}
		if taken {
			conflicts = append(conflicts, msgUsernameExists)
		}
	}
	if email = strings.TrimSpace(email); email != "" {
		taken, err := s.users.EmailTaken(ctx, email)
		if err != nil {
			return nil, apperr.Internal("failed to check e-mail", err)
		}
		if taken {
			conflicts = append(conflicts, msgEmailExists)
		}
	}
	return conflicts, nil
}

func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperr.Validation("Username is required")
	}
	taken, err := s.users.UsernameTaken(ctx, username, "")
	if err != nil {
		return false, apperr.Internal("failed to check username", err)
	}
	return taken, nil
}

// Signup creates an inactive account and mails its first code. If the code
// cannot be issued the account is deleted again.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	conflicts, err := s.CheckAvailability(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, apperr.Validation(conflicts[0])
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	now := s.now()
	user := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Structure:    req.Structure,
		Bio:          req.Bio,
		Privacy:      PrivacyPublic,
		Candidate:    req.Candidate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Validation("Username or e-mail already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	if _, err := s.ledger.Issue(ctx, user.Email); err != nil {
		if derr := s.users.DeleteUser(context.WithoutCancel(ctx), user.ID); derr != nil {
			s.log.Error("failed to roll back signup", zap.String("user_id", user.ID), zap.Error(derr))
		}
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	if _, err := s.userByEmail(ctx, email, "User not found. Please sign up first."); err != nil {
		return err
	}
	_, err := s.ledger.Issue(ctx, email)
	return err
}

// VerifySignup confirms a pending signup is still inside its window.
func (s *Service) VerifySignup(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("Email is required")
	}
	user, err := s.userByEmail(ctx, email, "User registration not found")
	if err != nil {
		return nil, err
	}
	if s.now().Sub(user.CreatedAt) > SignupWindow {
		return nil, apperr.Expired("Signup verification expired")
	}
	return user, nil
}

// CleanupSignup deletes an abandoned signup. Verified accounts and accounts
// older than the signup window are never deleted.
func (s *Service) CleanupSignup(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	user, err := s.userByEmail(ctx, email, "User not found")
	if err != nil {
		return err
	}
	if user.IsActive {
		return apperr.Forbidden("Cleanup not allowed for verified accounts")
	}
	if s.now().Sub(user.CreatedAt) > SignupWindow {
		return apperr.Forbidden("Cleanup not allowed for users created more than 5 minutes ago")
	}
	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to delete user", err)
	}
	s.log.Info("abandoned signup removed", zap.String("user_id", user.ID))
	return nil
}

// VerifyOTP redeems a code and activates the account it was sent to.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*User, error) {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, apperr.Validation("Email and OTP are required")
	}
	if err := s.ledger.Verify(ctx, email, code); err != nil {
		return nil, err
	}
	user, err := s.userByEmail(ctx, email, "User not found")
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		if err := s.users.UpdateUser(ctx, user.ID, map[string]any{"is_active": true}); err != nil {
			return nil, apperr.Internal("failed to activate user", err)
		}
		user.IsActive = true
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	user, err := s.userByEmail(ctx, email, "User not found")
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Account not verified")
	}

	now := s.now()
	if err := s.users.UpdateUser(ctx, user.ID, map[string]any{"last_login": now}); err != nil {
		return nil, apperr.Internal("failed to record login", err)
	}
	user.LastLogin = &now

	token, exp, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.ParseSession(token)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return nil, apperr.Unauthorized("Token has expired")
	case err != nil:
		return nil, apperr.Unauthorized("Invalid token")
	}
	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// SessionUserID satisfies middleware.SessionVerifier.
func (s *Service) SessionUserID(ctx context.Context, token string) (string, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// VerifyLogin accepts a session only shortly after the login that minted it.
func (s *Service) VerifyLogin(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Authentication credentials were not provided")
	}
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.LastLogin == nil || s.now().Sub(*user.LastLogin) > LoginFreshness {
		return nil, apperr.Expired("Login session expired")
	}
	return user, nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	user, err := s.userByEmail(ctx, email, "E-mail does not exist")
	if err != nil {
		return err
	}

	token, err := s.tokens.IssueReset(user.ID)
	if err != nil {
		return apperr.Internal("failed to issue reset token", err)
	}
	link := s.frontendURL + "/authentication/changepassword?token=" + url.QueryEscape(token)
	msg, err := mailer.PasswordResetEmail(user.Email, link, ResetTTL, s.frontendURL)
	if err != nil {
		return apperr.Internal("failed to render reset email", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, mailer.SendTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, msg); err != nil {
		s.log.Warn("reset delivery failed", zap.String("user_id", user.ID), zap.Error(err))
		return apperr.Delivery("Failed to send reset email", err)
	}
	return nil
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperr.Validation("Token and new password are required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	userID, err := s.tokens.ParseReset(token)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return apperr.Expired("Reset token has expired")
	case err != nil:
		return apperr.Validation("Invalid reset token")
	}

	if _, err := s.users.UserByID(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to load user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.users.UpdateUser(ctx, userID, map[string]any{"password_hash": string(hash)}); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	s.log.Info("password reset", zap.String("user_id", userID))
	return nil
}

func (s *Service) userByEmail(ctx context.Context, email, notFound string) (*User, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(notFound)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}
