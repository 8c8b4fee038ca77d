package server

import "gainfully/internal/feed"

const sessionCookieName = "session"

// ItemView is one rendered feed card. Exactly one of Job or Experience is
// set, mirroring the engine's tagged union.
type ItemView struct {
	Kind       string
	Date       string
	Job        *JobView
	Experience *ExperienceView
}

// JobView carries a job posting plus its resolved employer for the template.
type JobView struct {
	Title           string
	Description     string
	Location        string
	Field           string
	ExperienceLevel string
	Salary          string
	EmployerName    string
	EmployerLogoURL string
}

// ExperienceView carries an experience plus its resolved author.
type ExperienceView struct {
	Title          string
	Description    string
	ExperienceType string
	IsCurrent      bool
	Started        string
	Ended          string
	UserName       string
	UserLocation   string
	UserAvatarURL  string
}

// IndexData drives the home template. Exactly one of LoadError / NoData /
// Items-with-possible-empty is meaningful; the template distinguishes a
// failed load, a not-yet-loaded feed, and an empty filter result.
type IndexData struct {
	SiteTitle       string
	User            *feed.User
	Query           string
	LocationFilter  string
	CompanyFilter   string
	SkillFilter     string
	ShowJobs        bool
	ShowExperiences bool
	ActiveFilters   int
	Items           []ItemView
	LoadError       string
	NoData          bool
	CSRFToken       string
}

// LoginData drives the login template.
type LoginData struct {
	SiteTitle string
	Error     string
	CSRFToken string
}
