package feed

import (
	"strings"
)

// Apply evaluates the filter state against each item and returns the passing
// subsequence in order. It is a pure function of (items, state, snapshot
// maps) and safe to re-run on every request.
//
// All string predicates are case-insensitive substring containment, never
// exact match and never tokenized. An item whose related entity is
// unresolved matches against the empty string, so a location or company
// filter hides it rather than erroring.
func Apply(items []FeedItem, state FilterState, employers map[int64]Employer, connectedUsers map[int64]User) []FeedItem {
	out := make([]FeedItem, 0, len(items))
	for _, item := range items {
		if matches(item, state, employers, connectedUsers) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item FeedItem, state FilterState, employers map[int64]Employer, connectedUsers map[int64]User) bool {
	switch item.Kind {
	case KindJob:
		return matchesJob(item.Job, state, employers)
	case KindExperience:
		return matchesExperience(item.Experience, state, connectedUsers)
	default:
		return false
	}
}

func matchesJob(job *JobPosting, state FilterState, employers map[int64]Employer) bool {
	if state.Query != "" && !containsFold(job.Title, state.Query) && !containsFold(job.Description, state.Query) {
		return false
	}
	if state.Location != "" && !containsFold(job.Location, state.Location) {
		return false
	}
	if state.Company != "" && !containsFold(employers[job.EmployerID].Name, state.Company) {
		return false
	}
	return true
}

func matchesExperience(exp *Experience, state FilterState, connectedUsers map[int64]User) bool {
	if state.Query != "" && !containsFold(exp.Title, state.Query) && !containsFold(exp.Description, state.Query) {
		return false
	}
	if state.Location != "" && !containsFold(connectedUsers[exp.UserID].Location, state.Location) {
		return false
	}
	// Skills have no dedicated field; the description is the skill corpus.
	if state.Skill != "" && !containsFold(exp.Description, state.Skill) {
		return false
	}
	return true
}

// ActiveFilterCount reports how many filter controls diverge from the
// default state, for the UI badge. The two kind checkboxes count as one
// control when either is off. The count never feeds back into predicate
// logic.
func ActiveFilterCount(state FilterState) int {
	count := 0
	if state.Query != "" {
		count++
	}
	if state.Location != "" {
		count++
	}
	if state.Company != "" {
		count++
	}
	if state.Skill != "" {
		count++
	}
	if !state.IncludeJobs || !state.IncludeExperiences {
		count++
	}
	return count
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
