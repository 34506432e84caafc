package types

import "time"

// Role identifies which side of the portal an account belongs to.
type Role string

// Supported account roles.
const (
	// RoleStudent is a candidate account. Student accounts browse the
	// job feed and apply to jobs.
	RoleStudent Role = "student"

	// RoleCompany is an employer account. Company accounts post jobs
	// and review applications.
	RoleCompany Role = "company"
)

// DefaultProfilePicture is used when an account has not uploaded one.
const DefaultProfilePicture = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

// User represents an account in the system.
//
// The role-specific attributes live on exactly one of the Student or
// Company variants; the variant matching Role is always populated and
// the other is always nil.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"firstName" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"lastName" db:"last_name"`

	// Email is the user's unique email address, stored lowercased.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates whether this account is a student or a company.
	// Role and Email are immutable after signup.
	Role Role `json:"role" db:"role"`

	// ProfilePicture is the URL or object key of the account's display
	// image. Defaults to DefaultProfilePicture at signup.
	ProfilePicture string `json:"profilePicture" db:"profile_picture"`

	// Student holds the student-specific attributes. Non-nil exactly
	// when Role is RoleStudent.
	Student *StudentProfile `json:"student,omitempty"`

	// Company holds the company-specific attributes. Non-nil exactly
	// when Role is RoleCompany.
	Company *CompanyProfile `json:"company,omitempty"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StudentProfile carries the attributes required of student accounts.
type StudentProfile struct {
	// Gender is one of "male", "female" or "other".
	Gender string `json:"gender" db:"gender"`

	// Skills is the non-empty set of skill names the student claims.
	// Matching against job requirements is case-insensitive.
	Skills []string `json:"skills" db:"skills"`

	// ResumeKey is the object-storage key of the student's uploaded
	// resume, empty when none has been uploaded.
	ResumeKey string `json:"resume,omitempty" db:"resume_key"`
}

// CompanyProfile carries the attributes required of company accounts.
type CompanyProfile struct {
	// CompanyName is the employer's display name.
	CompanyName string `json:"companyName" db:"company_name"`

	// Industry is the employer's industry sector.
	Industry string `json:"industry" db:"industry"`
}

// IsStudent reports whether the user is a student account.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsCompany reports whether the user is a company account.
func (u User) IsCompany() bool {
	return u.Role == RoleCompany
}

// SkillList returns the student's skill list, or nil for company accounts.
func (u User) SkillList() []string {
	if u.Student == nil {
		return nil
	}
	return u.Student.Skills
}

// CompanySummary is the subset of company fields joined into job and
// application views.
type CompanySummary struct {
	ID             int    `json:"id" db:"id"`
	CompanyName    string `json:"companyName" db:"company_name"`
	Industry       string `json:"industry" db:"industry"`
	ProfilePicture string `json:"profilePicture" db:"profile_picture"`
}

// CandidateSummary is the subset of student fields joined into
// company-facing application views.
type CandidateSummary struct {
	ID             int      `json:"id" db:"id"`
	FirstName      string   `json:"firstName" db:"first_name"`
	LastName       string   `json:"lastName" db:"last_name"`
	Email          string   `json:"email" db:"email"`
	Gender         string   `json:"gender" db:"gender"`
	Skills         []string `json:"skills" db:"skills"`
	ProfilePicture string   `json:"profilePicture" db:"profile_picture"`
	ResumeKey      string   `json:"resume,omitempty" db:"resume_key"`
}
