package parties

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/soma-campus/soma-backend/internal/apperr"
)

// Links are optional profile URLs shared by parties and candidates.
type Links struct {
	Website   *string `json:"website"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	XTwitter  *string `json:"x_twitter"`
	Youtube   *string `json:"youtube"`
	Linkedin  *string `json:"linkedin"`
	Tiktok    *string `json:"tiktok"`
}

// PartyInput is used for both registration and partial updates. Nil fields
// are left unchanged on update.
type PartyInput struct {
	PartyName   *string `json:"party_name"`
	Manifesto   *string `json:"manifesto"`
	PartyLeader *string `json:"party_leader"`
	Structure   *string `json:"structure"`
	Logo        *string `json:"logo"`
	Links
}

type CandidateInput struct {
	CandidateName  *string `json:"candidate_name"`
	Department     *string `json:"department"`
	Manifesto      *string `json:"manifesto"`
	Structure      *string `json:"structure"`
	ProfilePicture *string `json:"profile_picture"`
	Links
}

func (l Links) columns(fields map[string]any) error {
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"website", l.Website},
		{"facebook", l.Facebook},
		{"instagram", l.Instagram},
		{"x_twitter", l.XTwitter},
		{"youtube", l.Youtube},
		{"linkedin", l.Linkedin},
		{"tiktok", l.Tiktok},
	} {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v != "" && !validURL(v) {
			return apperr.Validation(fmt.Sprintf("Enter a valid URL for %s", f.column))
		}
		fields[f.column] = v
	}
	return nil
}

func (in PartyInput) columns() (map[string]any, error) {
	fields := map[string]any{}
	if in.PartyName != nil {
		name := strings.TrimSpace(*in.PartyName)
		if err := checkName("Party name", name); err != nil {
			return nil, err
		}
		fields["party_name"] = name
		fields["name_key"] = Key(name)
	}
	setText(fields, "manifesto", in.Manifesto)
	setText(fields, "party_leader", in.PartyLeader)
	setText(fields, "structure", in.Structure)
	setText(fields, "logo", in.Logo)
	if err := in.Links.columns(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (in CandidateInput) columns() (map[string]any, error) {
	fields := map[string]any{}
	if in.CandidateName != nil {
		name := strings.TrimSpace(*in.CandidateName)
		if err := checkName("Candidate name", name); err != nil {
			return nil, err
		}
		fields["candidate_name"] = name
		fields["name_key"] = Key(name)
	}
	if in.Department != nil {
		dept := strings.TrimSpace(*in.Department)
		fields["department"] = dept
		fields["department_key"] = Key(dept)
	}
	setText(fields, "manifesto", in.Manifesto)
	setText(fields, "structure", in.Structure)
	setText(fields, "profile_picture", in.ProfilePicture)
	if err := in.Links.columns(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func checkName(label, name string) error {
	if name == "" {
		return apperr.Validation(label + " is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return apperr.Validation(label + " must be at most 100 characters")
	}
	return nil
}

func setText(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func partyFrom(fields map[string]any) *Party {
	return &Party{
		PartyName:   text(fields, "party_name"),
		NameKey:     text(fields, "name_key"),
		Manifesto:   text(fields, "manifesto"),
		PartyLeader: text(fields, "party_leader"),
		Structure:   text(fields, "structure"),
		Logo:        text(fields, "logo"),
		Website:     text(fields, "website"),
		Facebook:    text(fields, "facebook"),
		Instagram:   text(fields, "instagram"),
		XTwitter:    text(fields, "x_twitter"),
		Youtube:     text(fields, "youtube"),
		Linkedin:    text(fields, "linkedin"),
		Tiktok:      text(fields, "tiktok"),
	}
}

func candidateFrom(fields map[string]any) *Candidate {
	return &Candidate{
		CandidateName:  text(fields, "candidate_name"),
		NameKey:        text(fields, "name_key"),
		Department:     text(fields, "department"),
		DepartmentKey:  text(fields, "department_key"),
		Manifesto:      text(fields, "manifesto"),
		Structure:      text(fields, "structure"),
		ProfilePicture: text(fields, "profile_picture"),
		Website:        text(fields, "website"),
		Facebook:       text(fields, "facebook"),
		Instagram:      text(fields, "instagram"),
		XTwitter:       text(fields, "x_twitter"),
		Youtube:        text(fields, "youtube"),
		Linkedin:       text(fields, "linkedin"),
		Tiktok:         text(fields, "tiktok"),
	}
}

func text(fields map[string]any, column string) string {
	v, _ := fields[column].(string)
	return v
}
