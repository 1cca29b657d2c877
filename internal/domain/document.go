package domain

import "encoding/json"

// StructuredDocument is the normalized output of resume structuring. It is
// never partially trusted: either the whole object came from a successful
// structuring run, or it is a fallback document carrying only the raw text.
type StructuredDocument struct {
	ContactInfo ContactInfo       `json:"contactInfo"`
	Experience  []ExperienceEntry `json:"experience"`
	Education   []EducationEntry  `json:"education"`
	Skills      SkillsInput       `json:"skills"`
	Projects    []ProjectEntry    `json:"projects"`
	Sections    []Section         `json:"sections"`
}

type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// ExperienceEntry carries dates as raw strings; parsing happens during
// reconciliation so one bad date cannot invalidate the whole document.
type ExperienceEntry struct {
	ID           string   `json:"id,omitempty"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type EducationEntry struct {
	ID          string `json:"id,omitempty"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type ProjectEntry struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// SkillCategory is a named group of skills as produced by the model.
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// SkillsInput accepts both shapes the model produces for skills: a flat
// string list or a list of named categories.
type SkillsInput struct {
	Flat       []string        `json:"-"`
	Categories []SkillCategory `json:"-"`
}

func (s *SkillsInput) UnmarshalJSON(b []byte) error {
	var flat []string
	if err := json.Unmarshal(b, &flat); err == nil {
		s.Flat = flat
		s.Categories = nil
		return nil
	}
	var cats []SkillCategory
	if err := json.Unmarshal(b, &cats); err != nil {
		return err
	}
	s.Categories = cats
	s.Flat = nil
	return nil
}

func (s SkillsInput) MarshalJSON() ([]byte, error) {
	if len(s.Categories) > 0 {
		return json.Marshal(s.Categories)
	}
	if s.Flat == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Flat)
}

// IsEmpty reports whether no skills were provided in either shape.
func (s SkillsInput) IsEmpty() bool {
	return len(s.Flat) == 0 && len(s.Categories) == 0
}

type Section struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// NewFallbackDocument wraps raw resume text in a StructuredDocument with a
// single unlabeled section and empty structured fields. It is substituted
// wholesale whenever structuring cannot be completed.
func NewFallbackDocument(rawText string) *StructuredDocument {
	return &StructuredDocument{
		Experience: []ExperienceEntry{},
		Education:  []EducationEntry{},
		Projects:   []ProjectEntry{},
		Sections:   []Section{{Content: rawText}},
	}
}
