package model

import "time"

// Candidate is a job applicant. Identity is immutable; skills may be amended
// outside this service.
type Candidate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Location   string    `json:"location,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Education  string    `json:"education,omitempty"`
	Skills     []string  `json:"skills"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobPosting is a job opening. Read-only to the evaluation core.
type JobPosting struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	RequiredSkills []string  `json:"required_skills"`
	CreatedAt      time.Time `json:"created_at"`
}
