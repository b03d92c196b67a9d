package parties

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/db"
)

type Party struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	PartyName       string        `gorm:"size:100;not null" json:"party_name"`
	NameKey         string        `gorm:"size:100;not null;uniqueIndex" json:"-"`
	Manifesto       string        `gorm:"type:text" json:"manifesto"`
	Votes           int           `gorm:"not null;default:0" json:"votes"`
	Supporters      db.StringList `json:"supporters"`
	SupportersCount int           `gorm:"-" json:"supporters_count"`
	PartyLeader     string        `gorm:"size:100" json:"party_leader"`
	Structure       string        `gorm:"size:100" json:"structure"`
	Logo            string        `gorm:"type:text" json:"logo"`
	Website         string        `json:"website"`
	Facebook        string        `json:"facebook"`
	Instagram       string        `json:"instagram"`
	XTwitter        string        `json:"x_twitter"`
	Youtube         string        `json:"youtube"`
	Linkedin        string        `json:"linkedin"`
	Tiktok          string        `json:"tiktok"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Party) TableName() string { return "parties" }

func (p *Party) AfterFind(*gorm.DB) error {
	p.SupportersCount = len(p.Supporters)
	return nil
}

type Candidate struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	CandidateName   string        `gorm:"size:100;not null" json:"candidate_name"`
	NameKey         string        `gorm:"size:100;not null;uniqueIndex:idx_candidates_name_department" json:"-"`
	Department      string        `gorm:"size:100" json:"department"`
	DepartmentKey   string        `gorm:"size:100;not null;default:'';uniqueIndex:idx_candidates_name_department" json:"-"`
	Manifesto       string        `gorm:"type:text" json:"manifesto"`
	Votes           int           `gorm:"not null;default:0" json:"votes"`
	Supporters      db.StringList `json:"supporters"`
	SupportersCount int           `gorm:"-" json:"supporters_count"`
	Structure       string        `gorm:"size:100" json:"structure"`
	ProfilePicture  string        `gorm:"type:text" json:"profile_picture"`
	Website         string        `json:"website"`
	Facebook        string        `json:"facebook"`
	Instagram       string        `json:"instagram"`
	XTwitter        string        `json:"x_twitter"`
	Youtube         string        `json:"youtube"`
	Linkedin        string        `json:"linkedin"`
	Tiktok          string        `json:"tiktok"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }

func (c *Candidate) AfterFind(*gorm.DB) error {
	c.SupportersCount = len(c.Supporters)
	return nil
}

type BallotKind string

const (
	BallotParty     BallotKind = "party"
	BallotCandidate BallotKind = "candidate"
)

// Ballot records that a user has voted in a race. The unique index allows one
// ballot per user per kind.
type Ballot struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_ballots_user_kind"`
	Kind      BallotKind `gorm:"size:16;not null;uniqueIndex:idx_ballots_user_kind"`
	TargetID  uint       `gorm:"not null"`
	CreatedAt time.Time
}

func (Ballot) TableName() string { return "ballots" }

// Key folds a display name for case-insensitive uniqueness. Casers carry
// state, so each call gets its own.
func Key(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
