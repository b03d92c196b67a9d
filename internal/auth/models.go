package auth

import "time"

type Privacy string

const (
	PrivacyPublic  Privacy = "Public"
	PrivacyPrivate Privacy = "Private"
)

func (p Privacy) Valid() bool { return p == PrivacyPublic || p == PrivacyPrivate }

type User struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string     `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email          string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	FullName       string     `gorm:"size:100" json:"full_name"`
	FirstName      string     `gorm:"size:100" json:"first_name"`
	LastName       string     `gorm:"size:100" json:"last_name"`
	Bio            string     `gorm:"type:text" json:"bio"`
	ProfilePicture string     `gorm:"type:text" json:"profile_picture"`
	Structure      string     `gorm:"size:100" json:"structure"`
	Privacy        Privacy    `gorm:"size:7;not null;default:'Public'" json:"privacy_settings"`
	Facebook       string     `json:"user_facebook"`
	Instagram      string     `json:"user_instagram"`
	XTwitter       string     `json:"user_x_twitter"`
	Threads        string     `json:"user_threads"`
	Youtube        string     `json:"user_youtube"`
	Linkedin       string     `json:"user_linkedin"`
	Tiktok         string     `json:"user_tiktok"`
	IsActive       bool       `gorm:"not null;default:false" json:"is_active"`
	Candidate      bool       `gorm:"not null;default:false;index" json:"candidate"`
	Votes          int        `gorm:"not null;default:0" json:"votes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login"`
}

func (User) TableName() string { return "users" }

// OTP rows are never deleted. At most one row per email has IsUsed false.
type OTP struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:100;not null;index"`
	Code      string    `gorm:"size:6;not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"not null;default:false"`
}

func (OTP) TableName() string { return "otps" }

func (o *OTP) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }
