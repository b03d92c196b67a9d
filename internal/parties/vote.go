package parties

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/db"
)

type supporterRow struct {
	Supporters db.StringList
}

func (s *Service) VoteParty(ctx context.Context, userID string, partyID uint) (*Party, error) {
	if err := s.castBallot(ctx, userID, BallotParty, "parties", partyID); err != nil {
		return nil, err
	}
	s.log.Info("party vote", zap.Uint("party_id", partyID))
	return s.Party(ctx, partyID)
}

func (s *Service) VoteCandidate(ctx context.Context, userID string, candidateID uint) (*Candidate, error) {
	if err := s.castBallot(ctx, userID, BallotCandidate, "candidates", candidateID); err != nil {
		return nil, err
	}
	s.log.Info("candidate vote", zap.Uint("candidate_id", candidateID))
	return s.Candidate(ctx, candidateID)
}

// castBallot records the user's single ballot of this kind, bumps the tally
// with an in-database increment and appends the voter to supporters.
func (s *Service) castBallot(ctx context.Context, userID string, kind BallotKind, table string, targetID uint) error {
	already := apperr.Validation("You have already voted for a " + string(kind))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row supporterRow
		res := db.ForUpdate(tx).Table(table).Select("supporters").Where("id = ?", targetID).Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(notFoundMessage(kind))
		}

		var n int64
		if err := tx.Model(&Ballot{}).Where("user_id = ? AND kind = ?", userID, kind).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return already
		}

		now := s.now()
		if err := tx.Create(&Ballot{UserID: userID, Kind: kind, TargetID: targetID, CreatedAt: now}).Error; err != nil {
			return err
		}

		supporters := row.Supporters
		if !slices.Contains(supporters, userID) {
			supporters = append(supporters, userID)
		}
		return tx.Table(table).Where("id = ?", targetID).Updates(map[string]any{
			"votes":      gorm.Expr("votes + ?", 1),
			"supporters": supporters,
			"updated_at": now,
		}).Error
	})

	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case db.IsUniqueViolation(err):
		return already
	default:
		return apperr.Internal("failed to record vote", err)
	}
}

func notFoundMessage(kind BallotKind) string {
	if kind == BallotParty {
		return "Party not found"
	}
	return "Candidate not found"
}
