package services

import (
	"math"
	"strings"
)

// matchedSkills returns the required skills the candidate claims, in
// the job's order. Comparison is case-insensitive.
func matchedSkills(required, candidate []string) []string {
	have := make(map[string]struct{}, len(candidate))
	for _, skill := range candidate {
		have[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	matched := make([]string, 0, len(required))
	for _, skill := range required {
		if _, ok := have[strings.ToLower(strings.TrimSpace(skill))]; ok {
			matched = append(matched, skill)
		}
	}
	return matched
}

// missingSkills returns the required skills the candidate does not
// claim, in the job's order. Comparison is case-insensitive.
func missingSkills(required, candidate []string) []string {
	have := make(map[string]struct{}, len(candidate))
	for _, skill := range candidate {
		have[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	missing := make([]string, 0)
	for _, skill := range required {
		if _, ok := have[strings.ToLower(strings.TrimSpace(skill))]; !ok {
			missing = append(missing, skill)
		}
	}
	return missing
}

// matchScore is the rounded percentage of required skills the
// candidate claims, in [0,100]. A candidate with no recorded skills
// scores 0 against every job.
func matchScore(required, candidate []string) int {
	if len(candidate) == 0 || len(required) == 0 {
		return 0
	}
	matched := matchedSkills(required, candidate)
	return int(math.Round(float64(len(matched)) / float64(len(required)) * 100))
}
