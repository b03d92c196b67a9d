// Package seeds loads the starter parties and candidates for a fresh campus
// deployment from a YAML file.
package seeds

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/parties"
)

type File struct {
	Parties    []Party     `yaml:"parties"`
	Candidates []Candidate `yaml:"candidates"`
}

type Links struct {
	Website   string `yaml:"website"`
	Facebook  string `yaml:"facebook"`
	Instagram string `yaml:"instagram"`
	XTwitter  string `yaml:"x_twitter"`
	Youtube   string `yaml:"youtube"`
	Linkedin  string `yaml:"linkedin"`
	Tiktok    string `yaml:"tiktok"`
}

type Party struct {
	Name      string `yaml:"name"`
	Manifesto string `yaml:"manifesto"`
	Leader    string `yaml:"leader"`
	Structure string `yaml:"structure"`
	Logo      string `yaml:"logo"`
	Links     Links  `yaml:"links"`
}

type Candidate struct {
	Name           string `yaml:"name"`
	Department     string `yaml:"department"`
	Manifesto      string `yaml:"manifesto"`
	Structure      string `yaml:"structure"`
	ProfilePicture string `yaml:"profile_picture"`
	Links          Links  `yaml:"links"`
}

type Result struct {
	Created int
	Skipped int
}

type Registrar interface {
	RegisterParty(ctx context.Context, in parties.PartyInput) (*parties.Party, error)
	RegisterCandidate(ctx context.Context, in parties.CandidateInput) (*parties.Candidate, error)
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// SeedAll registers every entry through the normal service rules. Entries the
// service rejects as invalid, duplicates included, are logged and skipped so
// the seed can be re-run.
func SeedAll(ctx context.Context, reg Registrar, f *File, log *zap.Logger) (Result, error) {
	var res Result
	record := func(kind, name string, err error) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case apperr.Is(err, apperr.KindValidation):
			log.Warn("seed entry skipped", zap.String("kind", kind), zap.String("name", name), zap.String("reason", apperr.MessageOf(err)))
			res.Skipped++
			return nil
		default:
			return fmt.Errorf("seed %s %q: %w", kind, name, err)
		}
	}

	for _, p := range f.Parties {
		_, err := reg.RegisterParty(ctx, parties.PartyInput{
			PartyName:   &p.Name,
			Manifesto:   optional(p.Manifesto),
			PartyLeader: optional(p.Leader),
			Structure:   optional(p.Structure),
			Logo:        optional(p.Logo),
			Links:       p.Links.input(),
		})
		if err := record("party", p.Name, err); err != nil {
			return res, err
		}
	}
	for _, c := range f.Candidates {
		_, err := reg.RegisterCandidate(ctx, parties.CandidateInput{
			CandidateName:  &c.Name,
			Department:     optional(c.Department),
			Manifesto:      optional(c.Manifesto),
			Structure:      optional(c.Structure),
			ProfilePicture: optional(c.ProfilePicture),
			Links:          c.Links.input(),
		})
		if err := record("candidate", c.Name, err); err != nil {
			return res, err
		}
	}

	log.Info("seed complete", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (l Links) input() parties.Links {
	return parties.Links{
		Website:   optional(l.Website),
		Facebook:  optional(l.Facebook),
		Instagram: optional(l.Instagram),
		XTwitter:  optional(l.XTwitter),
		Youtube:   optional(l.Youtube),
		Linkedin:  optional(l.Linkedin),
		Tiktok:    optional(l.Tiktok),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
