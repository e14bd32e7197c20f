// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Stats is the aggregated data bag for one run.
// It is built once by the aggregator and consumed by the template renderer.
type Stats struct {
	Age          string      `json:"age"`
	Followers    int         `json:"followers"`
	Repos        int         `json:"repos"`
	ContribRepos int         `json:"contrib_repos"`
	Stars        int         `json:"stars"`
	Commits      int         `json:"commits"`
	LinesOfCode  LinesOfCode `json:"lines_of_code"`
}

// LinesOfCode holds line deltas summed across a repository set.
// Total may be negative when more lines were deleted than added.
type LinesOfCode struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
	Total   int `json:"total"`
	Commits int `json:"commits"`
}

// NewLinesOfCode derives Total from added and deleted.
func NewLinesOfCode(added, deleted, commits int) LinesOfCode {
	return LinesOfCode{
		Added:   added,
		Deleted: deleted,
		Total:   added - deleted,
		Commits: commits,
	}
}

// Repository is a repository edge discovered while paginating a user's repositories.
type Repository struct {
	FullName   string
	IsFork     bool
	IsArchived bool
	Stars      int
}

// UserInfo is the profile record of a GitHub user.
// Optional fields are nil when GitHub has no value for them.
type UserInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Location  *string   `json:"location,omitempty"`
	Website   *string   `json:"website,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Twitter   *string   `json:"twitter,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Hireable  bool      `json:"hireable"`
}

// Timing records the wall-clock duration of one collection step.
type Timing struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}
