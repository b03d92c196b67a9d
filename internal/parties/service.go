package parties

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/db"
)

const (
	msgPartyExists         = "A party with this name already exists"
	msgCandidateExists     = "A candidate with this name already exists"
	msgCandidateDeptExists = "A candidate with this name already exists in this department"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(d *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: d, log: log.Named("parties"), now: time.Now}
}

func (s *Service) ListParties(ctx context.Context) ([]Party, error) {
	var out []Party
	if err := s.db.WithContext(ctx).Order("votes DESC").Order("party_name ASC").Find(&out).Error; err != nil {
		return nil, apperr.Internal("failed to list parties", err)
	}
	return out, nil
}

func (s *Service) Party(ctx context.Context, id uint) (*Party, error) {
	var p Party
	if err := s.find(ctx, &p, id, "Party not found"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) RegisterParty(ctx context.Context, in PartyInput) (*Party, error) {
	if in.PartyName == nil {
		return nil, apperr.Validation("Party name is required")
	}
	fields, err := in.columns()
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, &Party{}, fields["name_key"].(string), "", 0, msgPartyExists); err != nil {
		return nil, err
	}

	p := partyFrom(fields)
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	if err := s.create(ctx, p, msgPartyExists); err != nil {
		return nil, err
	}
	s.log.Info("party registered", zap.Uint("party_id", p.ID))
	return s.Party(ctx, p.ID)
}

func (s *Service) UpdateParty(ctx context.Context, id uint, in PartyInput) (*Party, error) {
	current, err := s.Party(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := in.columns()
	if err != nil {
		return nil, err
	}
	if key, ok := fields["name_key"].(string); ok && key != current.NameKey {
		if err := s.ensureUnique(ctx, &Party{}, key, "", id, msgPartyExists); err != nil {
			return nil, err
		}
	}
	if err := s.update(ctx, &Party{}, id, fields, msgPartyExists); err != nil {
		return nil, err
	}
	return s.Party(ctx, id)
}

func (s *Service) ListCandidates(ctx context.Context) ([]Candidate, error) {
	var out []Candidate
	if err := s.db.WithContext(ctx).Order("votes DESC").Order("candidate_name ASC").Find(&out).Error; err != nil {
		return nil, apperr.Internal("failed to list candidates", err)
	}
	return out, nil
}

func (s *Service) Candidate(ctx context.Context, id uint) (*Candidate, error) {
	var c Candidate
	if err := s.find(ctx, &c, id, "Candidate not found"); err != nil {
		return nil, err
	}
	return &c, nil
}

// RegisterCandidate rejects a name already used in the same department, or
// anywhere when no department is given.
func (s *Service) RegisterCandidate(ctx context.Context, in CandidateInput) (*Candidate, error) {
	if in.CandidateName == nil {
		return nil, apperr.Validation("Candidate name is required")
	}
	fields, err := in.columns()
	if err != nil {
		return nil, err
	}
	deptKey, _ := fields["department_key"].(string)
	if err := s.ensureCandidateUnique(ctx, fields["name_key"].(string), deptKey, 0); err != nil {
		return nil, err
	}

	c := candidateFrom(fields)
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	if err := s.create(ctx, c, msgCandidateDeptExists); err != nil {
		return nil, err
	}
	s.log.Info("candidate registered", zap.Uint("candidate_id", c.ID))
	return s.Candidate(ctx, c.ID)
}

func (s *Service) UpdateCandidate(ctx context.Context, id uint, in CandidateInput) (*Candidate, error) {
	current, err := s.Candidate(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := in.columns()
	if err != nil {
		return nil, err
	}
	nameKey, nameSet := fields["name_key"].(string)
	deptKey, deptSet := fields["department_key"].(string)
	if nameSet || deptSet {
		if !nameSet {
			nameKey = current.NameKey
		}
		if !deptSet {
			deptKey = current.DepartmentKey
		}
		if nameKey != current.NameKey || deptKey != current.DepartmentKey {
			if err := s.ensureCandidateUnique(ctx, nameKey, deptKey, id); err != nil {
				return nil, err
			}
		}
	}
	if err := s.update(ctx, &Candidate{}, id, fields, msgCandidateDeptExists); err != nil {
		return nil, err
	}
	return s.Candidate(ctx, id)
}

func (s *Service) ensureCandidateUnique(ctx context.Context, nameKey, deptKey string, excludeID uint) error {
	if deptKey == "" {
		return s.ensureUnique(ctx, &Candidate{}, nameKey, "", excludeID, msgCandidateExists)
	}
	return s.ensureUnique(ctx, &Candidate{}, nameKey, deptKey, excludeID, msgCandidateDeptExists)
}

// ensureUnique counts rows sharing the name key, narrowed to deptKey when set.
func (s *Service) ensureUnique(ctx context.Context, model any, nameKey, deptKey string, excludeID uint, msg string) error {
	q := s.db.WithContext(ctx).Model(model).Where("name_key = ?", nameKey)
	if deptKey != "" {
		q = q.Where("department_key = ?", deptKey)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return apperr.Internal("failed to check name", err)
	}
	if n > 0 {
		return apperr.Validation(msg)
	}
	return nil
}

func (s *Service) find(ctx context.Context, dst any, id uint, notFound string) error {
	err := s.db.WithContext(ctx).First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	if err != nil {
		return apperr.Internal("failed to load record", err)
	}
	return nil
}

// create inserts model. The name pre-check can race; the unique index
// decides and the loser gets the same validation error.
func (s *Service) create(ctx context.Context, model any, dupMsg string) error {
	err := s.db.WithContext(ctx).Create(model).Error
	if db.IsUniqueViolation(err) {
		return apperr.Validation(dupMsg)
	}
	if err != nil {
		return apperr.Internal("failed to save record", err)
	}
	return nil
}

func (s *Service) update(ctx context.Context, model any, id uint, fields map[string]any, dupMsg string) error {
	if len(fields) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields).Error
	if db.IsUniqueViolation(err) {
		return apperr.Validation(dupMsg)
	}
	if err != nil {
		return apperr.Internal(fmt.Sprintf("failed to update record %d", id), err)
	}
	return nil
}
