package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the contact fields of a user's persistent profile.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	LinkedIn  string    `json:"linkedin"`
	GitHub    string    `json:"github"`
	Website   string    `json:"website"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkExperience is the persisted, deduplicated form of an experience entry.
type WorkExperience struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Company      string     `json:"company"`
	Position     string     `json:"position"`
	Location     string     `json:"location,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	Achievements []string   `json:"achievements"`
	CreatedAt    time.Time  `json:"created_at"`
}

type EducationRecord struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsCurrent   bool       `json:"is_current"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Skill struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Skills      []string  `json:"skills"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
