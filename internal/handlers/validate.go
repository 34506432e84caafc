package handlers

import (
	"strings"

	"github.com/jobportal/apiserver/types"
)

// validate sanitizes the request in place and returns one complaint per
// failing field. An empty slice means the request is acceptable.
func (req *SignupRequest) validate() []string {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Industry = strings.TrimSpace(req.Industry)
	req.Skills = trimSkills(req.Skills)

	var errs []string

	if len(req.FirstName) < 3 {
		errs = append(errs, "First name must be at least 3 characters long")
	}
	if len(req.LastName) < 2 {
		errs = append(errs, "Last name must be at least 2 characters long")
	}
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, "Please provide a valid email address")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long")
	}

	switch req.Role {
	case types.RoleStudent:
		switch req.Gender {
		case "male", "female", "other":
		default:
			errs = append(errs, "Gender must be male, female or other")
		}
		if len(req.Skills) == 0 {
			errs = append(errs, "At least one skill is required")
		}
	case types.RoleCompany:
		if len(req.CompanyName) < 2 {
			errs = append(errs, "Company name must be at least 2 characters long")
		}
		if len(req.Industry) < 2 {
			errs = append(errs, "Industry must be at least 2 characters long")
		}
	default:
		errs = append(errs, "Role must be either 'student' or 'company'")
	}

	return errs
}

// validate sanitizes the request in place and returns one complaint per
// failing field.
func (req *CreateJobRequest) validate() []string {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.RequiredSkills = trimSkills(req.RequiredSkills)

	var errs []string

	if len(req.Title) < 2 {
		errs = append(errs, "Job title must be at least 2 characters long")
	}
	if len(req.Description) < 10 {
		errs = append(errs, "Job description must be at least 10 characters long")
	}
	if len(req.RequiredSkills) == 0 {
		errs = append(errs, "At least one required skill must be specified")
	}
	if len(req.Location) < 2 {
		errs = append(errs, "Location must be at least 2 characters long")
	}
	if !types.ValidJobType(req.JobType) {
		errs = append(errs, "Job type must be one of: full-time, part-time, internship, contract")
	}
	if !types.ValidExperienceLevel(req.ExperienceLevel) {
		errs = append(errs, "Experience level must be one of: entry, mid, senior, lead")
	}

	return errs
}

// trimSkills drops surrounding whitespace and empty entries while
// preserving order.
func trimSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			cleaned = append(cleaned, skill)
		}
	}
	return cleaned
}
