package stats

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/auth"
	"github.com/soma-campus/soma-backend/internal/parties"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time

	// impressions arrive on every app open; only some are logged
	sample rate.Sometimes
}

func NewService(d *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		db:     d,
		log:    log.Named("stats"),
		now:    time.Now,
		sample: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

func (s *Service) UserStats(ctx context.Context) (*Growth, error) {
	return s.growth(ctx, &auth.User{}, "users")
}

func (s *Service) PartyStats(ctx context.Context) (*Growth, error) {
	return s.growth(ctx, &parties.Party{}, "parties")
}

func (s *Service) CandidateStats(ctx context.Context) (*Growth, error) {
	return s.growth(ctx, &parties.Candidate{}, "candidates")
}

// growth compares rows created this calendar month (UTC) with the month
// before.
func (s *Service) growth(ctx context.Context, model any, what string) (*Growth, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	count := func(dst *int64, query string, args ...any) error {
		q := s.db.WithContext(ctx).Model(model)
		if query != "" {
			q = q.Where(query, args...)
		}
		if err := q.Count(dst).Error; err != nil {
			return apperr.Internal("failed to count "+what, err)
		}
		return nil
	}

	g := &Growth{}
	if err := count(&g.Total, ""); err != nil {
		return nil, err
	}
	if err := count(&g.CurrentMonth, "created_at >= ? AND created_at <= ?", monthStart, now); err != nil {
		return nil, err
	}
	if err := count(&g.PreviousMonth, "created_at >= ? AND created_at < ?", prevStart, monthStart); err != nil {
		return nil, err
	}
	g.Percentage = GrowthPercentage(g.CurrentMonth, g.PreviousMonth)
	g.Direction = "up"
	if g.Percentage < 0 {
		g.Direction = "down"
	}
	return g, nil
}

// GrowthPercentage is rounded to one decimal. With nothing to compare
// against, any activity counts as 100% growth.
func GrowthPercentage(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*10) / 10
}

// TrackImpression bumps today's counter with a single upsert. The first
// impression of a day is the one that leaves the counter at 1.
func (s *Service) TrackImpression(ctx context.Context) (*TrackResult, error) {
	now := s.now().UTC()
	day := now.Format(DayLayout)

	var row DailyImpression
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh := DailyImpression{Date: day, Impressions: 1, CreatedAt: now, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]any{
				"impressions": gorm.Expr("daily_impressions.impressions + 1"),
				"updated_at":  now,
			}),
		}).Create(&fresh).Error; err != nil {
			return err
		}
		return tx.Where(&DailyImpression{Date: day}).Take(&row).Error
	})
	if err != nil {
		return nil, apperr.Internal("failed to track impression", err)
	}

	res := &TrackResult{Date: day, Impressions: row.Impressions, IsNewDay: row.Impressions == 1}
	s.sample.Do(func() {
		s.log.Info("impression tracked", zap.String("date", day), zap.Int64("impressions", row.Impressions))
	})
	return res, nil
}

func (s *Service) ImpressionStats(ctx context.Context) (*ImpressionSummary, error) {
	today := s.now().UTC().Format(DayLayout)
	out := &ImpressionSummary{Daily: []DailyImpression{}}

	if err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}}).Find(&out.Daily).Error; err != nil {
		return nil, apperr.Internal("failed to load impressions", err)
	}
	for _, d := range out.Daily {
		out.Total += d.Impressions
		if d.Date == today {
			out.Today = d.Impressions
		}
	}
	out.Count = len(out.Daily)
	return out, nil
}

