package types

import "time"

// JobType classifies the employment arrangement of a posting.
type JobType string

// Supported job types.
const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// ValidJobType reports whether v is a recognized job type.
func ValidJobType(v JobType) bool {
	switch v {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	default:
		return false
	}
}

// ExperienceLevel classifies the seniority a posting targets.
type ExperienceLevel string

// Supported experience levels.
const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceLead   ExperienceLevel = "lead"
)

// ValidExperienceLevel reports whether v is a recognized experience level.
func ValidExperienceLevel(v ExperienceLevel) bool {
	switch v {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead:
		return true
	default:
		return false
	}
}

// Job represents a posting created by a company account.
// Jobs are immutable after creation.
type Job struct {
	// ID is the unique identifier of the job.
	ID int `json:"id" db:"id"`

	// Title is the human-readable name of the role.
	Title string `json:"title" db:"title"`

	// Description is the full posting text.
	Description string `json:"description" db:"description"`

	// CompanyID references the company account that owns this posting.
	CompanyID int `json:"companyId" db:"company_id"`

	// RequiredSkills is the non-empty ordered list of skills the role
	// asks for. Used both for feed ranking and for the advisory
	// missing-skills computation at application time.
	RequiredSkills []string `json:"requiredSkills" db:"required_skills"`

	// Location is the posting's location string.
	Location string `json:"location" db:"location"`

	// JobType is the employment arrangement of the posting.
	JobType JobType `json:"jobType" db:"job_type"`

	// ExperienceLevel is the seniority the posting targets.
	ExperienceLevel ExperienceLevel `json:"experienceLevel" db:"experience_level"`

	// CreatedAt is the timestamp at which the posting was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the posting.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JobWithCompany is a job joined with its owning company's display fields.
type JobWithCompany struct {
	Job
	Company CompanySummary `json:"company"`
}

// FeedItem is a job entry in a student's ranked feed.
type FeedItem struct {
	JobWithCompany

	// MatchScore is the rounded percentage of the job's required
	// skills the student claims, in [0,100].
	MatchScore int `json:"matchScore"`

	// MatchedSkills lists the required skills the student claims,
	// in the job's order.
	MatchedSkills []string `json:"matchedSkills"`
}
