package posts

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/soma-campus/soma-backend/internal/auth"
	"github.com/soma-campus/soma-backend/internal/db"
	"github.com/soma-campus/soma-backend/internal/parties"
)

const MaxContentLength = 500

// Author is the poster's profile as it was when the post was written.
type Author struct {
	Username       string `gorm:"size:30" json:"username"`
	Email          string `gorm:"size:100" json:"email"`
	FullName       string `gorm:"size:100" json:"fullName"`
	ProfilePicture string `gorm:"type:text" json:"profilePicture"`
}

type Post struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id,omitempty"`
	User        *auth.User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Content     string          `gorm:"size:500;not null" json:"content"`
	Images      db.StringList   `json:"images"`
	Videos      db.StringList   `json:"videos"`
	IsAnonymous bool            `gorm:"not null;default:false" json:"is_anonymous"`
	Author      Author          `gorm:"embedded;embeddedPrefix:author_" json:"user_data"`
	Upvotes     int             `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int             `gorm:"not null;default:0" json:"downvotes"`
	Comments    Comments        `json:"comments"`
	Parties     []parties.Party `gorm:"many2many:post_parties" json:"parties"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// redact strips who wrote an anonymous post before it leaves the service.
func (p *Post) redact() {
	if p.IsAnonymous {
		p.UserID = ""
		p.Author = Author{}
	}
}

type Comment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	ProfilePicture string    `json:"profile_picture"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Comments is stored as a JSON array in a single column, oldest first.
type Comments []Comment

func (c Comments) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Comments) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = Comments{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported comments type: %T", value)
	}
	out := Comments{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode comments: %w", err)
	}
	*c = out
	return nil
}

func (Comments) GormDBDataType(d *gorm.DB, _ *schema.Field) string {
	if d.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (d Direction) column() string {
	if d == Up {
		return "upvotes"
	}
	return "downvotes"
}

func (d Direction) opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// PostVote is one user's current reaction to a post.
type PostVote struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_votes_post_user"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_votes_post_user"`
	Direction Direction `gorm:"size:4;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PostVote) TableName() string { return "post_votes" }
