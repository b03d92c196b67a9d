package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/db"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the gorm-backed user and OTP repository.
type Store struct {
	db *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{db: d}
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// UsernameTaken ignores the user with excludeID so a user can keep their name.
func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", username)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("count usernames: %w", err)
	}
	return n > 0, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count emails: %w", err)
	}
	return n > 0, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CandidateUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Where("candidate = ?", true).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list candidate users: %w", err)
	}
	return users, nil
}

// ReplaceOTP retires every live code for the email and inserts otp, in one
// transaction.
func (s *Store) ReplaceOTP(ctx context.Context, otp *OTP) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&OTP{}).
			Where("email = ? AND is_used = ?", otp.Email, false).
			Update("is_used", true).Error
		if err != nil {
			return fmt.Errorf("invalidate otps: %w", err)
		}
		if err := tx.Create(otp).Error; err != nil {
			return fmt.Errorf("insert otp: %w", err)
		}
		return nil
	})
}

func (s *Store) LatestLiveOTP(ctx context.Context, email, code string) (*OTP, error) {
	var otp OTP
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND is_used = ?", email, code, false).
		Order("created_at DESC").
		Order("id DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &otp, nil
}

// MarkOTPUsed flips is_used only if it is still false. It reports whether
// this call won.
func (s *Store) MarkOTPUsed(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&OTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark otp used: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) OTPsFor(ctx context.Context, email string) ([]OTP, error) {
	var otps []OTP
	err := s.db.WithContext(ctx).Where("email = ?", email).Order("id").Find(&otps).Error
	if err != nil {
		return nil, fmt.Errorf("list otps: %w", err)
	}
	return otps, nil
}
