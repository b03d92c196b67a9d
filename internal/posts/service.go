package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/auth"
	"github.com/soma-campus/soma-backend/internal/db"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 50
)

type UserLookup interface {
	UserByID(ctx context.Context, id string) (*auth.User, error)
}

type Service struct {
	db    *gorm.DB
	users UserLookup
	log   *zap.Logger
	now   func() time.Time
}

func NewService(d *gorm.DB, users UserLookup, log *zap.Logger) *Service {
	return &Service{db: d, users: users, log: log.Named("posts"), now: time.Now}
}

type CreateRequest struct {
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
	IsAnonymous bool     `json:"is_anonymous"`
	PartyIDs    []uint   `json:"parties_ids"`
}

type Page struct {
	Posts       []Post  `json:"posts"`
	Count       int     `json:"count"`
	Total       int64   `json:"total"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
}

type VoteResult struct {
	PostID    uint      `json:"post_id"`
	Direction Direction `json:"direction"`
	Action    string    `json:"action"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

type DeleteResult struct {
	ID                   uint `json:"id"`
	CommentsRemoved      int  `json:"comments_removed"`
	PartiesDisassociated int  `json:"parties_disassociated"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation("Post content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, apperr.Validation(fmt.Sprintf("Post content must be at most %d characters", MaxContentLength))
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := Post{
		UserID:      user.ID,
		Content:     content,
		Images:      db.StringList(req.Images),
		Videos:      db.StringList(req.Videos),
		IsAnonymous: req.IsAnonymous,
		Author: Author{
			Username:       user.Username,
			Email:          user.Email,
			FullName:       user.FullName,
			ProfilePicture: user.ProfilePicture,
		},
		Comments:  Comments{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Unknown party ids are dropped rather than rejected.
	if len(req.PartyIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", req.PartyIDs).Find(&p.Parties).Error; err != nil {
			return nil, apperr.Internal("failed to load parties", err)
		}
	}
	if err := s.db.WithContext(ctx).Omit("Parties.*").Create(&p).Error; err != nil {
		return nil, apperr.Internal("failed to create post", err)
	}
	s.log.Info("post created", zap.Uint("post_id", p.ID), zap.Bool("anonymous", p.IsAnonymous))
	return s.Post(ctx, p.ID)
}

func (s *Service) Post(ctx context.Context, id uint) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).Preload("Parties").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load post", err)
	}
	p.redact()
	return &p, nil
}

// List returns posts newest first. page is 1-based.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, apperr.Validation("page must be a positive integer")
	}
	if limit < 1 {
		return nil, apperr.Validation("limit must be a positive integer")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&Post{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count posts", err)
	}
	offset := (page - 1) * limit
	var out []Post
	err := s.db.WithContext(ctx).
		Preload("Parties").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("failed to list posts", err)
	}
	for i := range out {
		out[i].redact()
	}

	res := &Page{
		Posts:       out,
		Count:       len(out),
		Total:       total,
		Page:        page,
		Limit:       limit,
		HasNext:     int64(offset+limit) < total,
		HasPrevious: page > 1,
	}
	if res.HasNext {
		next := fmt.Sprintf("?page=%d&limit=%d", page+1, limit)
		res.Next = &next
	}
	if res.HasPrevious {
		prev := fmt.Sprintf("?page=%d&limit=%d", page-1, limit)
		res.Previous = &prev
	}
	return res, nil
}

// Vote toggles the user's reaction. Voting the same way twice removes the
// vote, voting the other way moves it.
func (s *Service) Vote(ctx context.Context, userID string, postID uint, dir Direction) (*VoteResult, error) {
	res := &VoteResult{PostID: postID, Direction: dir}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := db.ForUpdate(tx).Select("id").First(&p, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Post not found")
			}
			return err
		}

		now := s.now()
		fields := map[string]any{"updated_at": now}
		var existing PostVote
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&PostVote{PostID: postID, UserID: userID, Direction: dir, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
				return err
			}
			fields[dir.column()] = gorm.Expr(dir.column() + " + 1")
			res.Action = "added"
		case err != nil:
			return err
		case existing.Direction == dir:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			fields[dir.column()] = gorm.Expr(dir.column() + " - 1")
			res.Action = "removed"
		default:
			if err := tx.Model(&existing).Updates(map[string]any{"direction": dir, "updated_at": now}).Error; err != nil {
				return err
			}
			other := dir.opposite().column()
			fields[dir.column()] = gorm.Expr(dir.column() + " + 1")
			fields[other] = gorm.Expr(other + " - 1")
			res.Action = "switched"
		}
		if err := tx.Model(&Post{}).Where("id = ?", postID).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Model(&Post{}).Select("upvotes", "downvotes").Where("id = ?", postID).
			Row().Scan(&res.Upvotes, &res.Downvotes)
	})

	var appErr *apperr.Error
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &appErr):
		return nil, err
	case db.IsUniqueViolation(err):
		return nil, apperr.Validation("Your vote is already being recorded")
	default:
		return nil, apperr.Internal("failed to record vote", err)
	}
}

func (s *Service) Delete(ctx context.Context, userID string, postID uint) (*DeleteResult, error) {
	res := &DeleteResult{ID: postID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := tx.First(&p, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Post not found")
			}
			return err
		}
		if p.UserID != userID {
			return apperr.Forbidden("You can only delete your own posts")
		}

		res.CommentsRemoved = len(p.Comments)
		res.PartiesDisassociated = int(tx.Model(&p).Association("Parties").Count())
		if err := tx.Model(&p).Association("Parties").Clear(); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})

	var appErr *apperr.Error
	switch {
	case err == nil:
		s.log.Info("post deleted", zap.Uint("post_id", postID))
		return res, nil
	case errors.As(err, &appErr):
		return nil, err
	default:
		return nil, apperr.Internal("failed to delete post", err)
	}
}

// AddComment appends to the post's comment list under a row lock so
// concurrent comments are not lost.
func (s *Service) AddComment(ctx context.Context, userID string, postID uint, text string) (*Comment, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, apperr.Validation("Comment text is required")
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	c := Comment{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		ProfilePicture: user.ProfilePicture,
		Text:           text,
		CreatedAt:      now,
	}
	if c.FullName == "" {
		c.FullName = user.Username
	}

	var total int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := db.ForUpdate(tx).Select("id", "comments").First(&p, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Post not found")
			}
			return err
		}
		comments := append(p.Comments, c)
		total = len(comments)
		return tx.Model(&Post{}).Where("id = ?", postID).Updates(map[string]any{
			"comments":   comments,
			"updated_at": now,
		}).Error
	})

	var appErr *apperr.Error
	switch {
	case err == nil:
		return &c, total, nil
	case errors.As(err, &appErr):
		return nil, 0, err
	default:
		return nil, 0, apperr.Internal("failed to add comment", err)
	}
}

// Search matches the query against post content and, for posts that are not
// anonymous, the author's username.
func (s *Service) Search(ctx context.Context, query string) ([]Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required")
	}
	pattern := "%" + escapeLike(cases.Lower(language.Und).String(query)) + "%"

	var out []Post
	err := s.db.WithContext(ctx).
		Preload("Parties").
		Where(`LOWER(content) LIKE ? ESCAPE '\'`, pattern).
		Or(`is_anonymous = ? AND LOWER(author_username) LIKE ? ESCAPE '\'`, false, pattern).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("failed to search posts", err)
	}
	for i := range out {
		out[i].redact()
	}
	return out, nil
}

func (s *Service) user(ctx context.Context, id string) (*auth.User, error) {
	u, err := s.users.UserByID(ctx, id)
	if errors.Is(err, auth.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

