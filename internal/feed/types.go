package feed

import (
	"encoding/json"
	"time"
)

// JobPosting status values used by the backend. Only active postings enter
// the feed.
const (
	JobStatusActive = "ACTIVE"
	JobStatusClosed = "CLOSED"
	JobStatusDraft  = "DRAFT"
)

// User is a read-only projection of a network member.
type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Location          string `json:"location,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Employer backs zero or more job postings.
type Employer struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Location          string `json:"location,omitempty"`
	CompanyPictureURL string `json:"company_picture_url,omitempty"`
}

// JobPosting is one opening published by an employer. PostedDate is an
// epoch-millisecond timestamp and is the feed sort key for this kind.
type JobPosting struct {
	ID              int64  `json:"id"`
	EmployerID      int64  `json:"employer_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location,omitempty"`
	Field           string `json:"field,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	SalaryMin       int64  `json:"salary_min,omitempty"`
	SalaryMax       int64  `json:"salary_max,omitempty"`
	Status          string `json:"status"`
	PostedDate      int64  `json:"posted_date"`
}

// DateValue is an experience date as the backend sends it: either a
// "YYYY-MM" style string or a bare epoch-millisecond JSON number. Numeric
// forms decode to their decimal string, so FormatMonthYear always sees one
// shape and a date in either form never fails the whole record.
type DateValue string

func (d *DateValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DateValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = DateValue(n.String())
	return nil
}

// Experience is a work-history update from a connected user. Start and end
// dates arrive either as "YYYY-MM" strings or as epoch-millisecond numbers;
// FormatMonthYear normalizes them for display. UpdatedAt is the feed sort
// key.
type Experience struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ExperienceType string    `json:"experience_type,omitempty"`
	StartDate      DateValue `json:"start_date,omitempty"`
	EndDate        DateValue `json:"end_date,omitempty"`
	IsCurrent      bool      `json:"is_current,omitempty"`
	CreatedAt      int64     `json:"created_at"`
	UpdatedAt      int64     `json:"updated_at"`
}

// Connection is an accepted bidirectional relationship between two users.
type Connection struct {
	UserID          int64 `json:"user_id"`
	ConnectedUserID int64 `json:"connected_user_id"`
}

// Partner returns the other party of the connection relative to userID.
func (c Connection) Partner(userID int64) int64 {
	if c.UserID == userID {
		return c.ConnectedUserID
	}
	return c.UserID
}

// ItemKind discriminates the FeedItem union.
type ItemKind int

const (
	KindJob ItemKind = iota
	KindExperience
)

func (k ItemKind) String() string {
	switch k {
	case KindJob:
		return "job"
	case KindExperience:
		return "experience"
	default:
		return "unknown"
	}
}

// FeedItem is one displayable unit of the merged chronological stream.
// Exactly one of Job or Experience is set, matching Kind; callers switch on
// Kind rather than probing the pointers.
type FeedItem struct {
	Kind       ItemKind
	Timestamp  int64
	Job        *JobPosting
	Experience *Experience
}

// ID returns the source record id of the item. It is used only to make the
// ordering of equal timestamps deterministic.
func (it FeedItem) ID() int64 {
	if it.Kind == KindJob {
		return it.Job.ID
	}
	return it.Experience.ID
}

// FilterState is the declarative, session-local filter configuration. It is
// threaded by value; the engine never mutates it.
type FilterState struct {
	Query              string
	Location           string
	Company            string
	Skill              string
	IncludeJobs        bool
	IncludeExperiences bool
}

// DefaultFilterState returns the state with no filters active.
func DefaultFilterState() FilterState {
	return FilterState{IncludeJobs: true, IncludeExperiences: true}
}

// Status is the load orchestrator state machine: idle -> loading ->
// {ready, error}.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot holds everything one completed load produced. It is never mutated
// after commit; the next load replaces it wholesale.
type Snapshot struct {
	Jobs           []JobPosting
	Experiences    []Experience
	Employers      map[int64]Employer
	ConnectedUsers map[int64]User
	LoadedAt       time.Time
}

// EmployerName returns the resolved employer name for a job posting, or the
// empty string when the employer could not be resolved.
func (s *Snapshot) EmployerName(employerID int64) string {
	if s == nil {
		return ""
	}
	return s.Employers[employerID].Name
}

// UserLocation returns the resolved connected user's location, or the empty
// string when the user could not be resolved.
func (s *Snapshot) UserLocation(userID int64) string {
	if s == nil {
		return ""
	}
	return s.ConnectedUsers[userID].Location
}
