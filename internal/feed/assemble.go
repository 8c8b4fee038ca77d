package feed

import (
	"sort"
)

// Assemble merges job postings and experiences into one sequence of tagged
// feed items, most recent first. Inclusion per kind is gated by the filter
// state's kind flags at assembly time: an excluded kind contributes zero
// items rather than hidden ones.
//
// Items are ordered by timestamp descending. The source behavior left equal
// timestamps unordered; here ties break on ascending record id within kind,
// jobs before experiences, so repeated assemblies of the same inputs always
// agree.
func Assemble(jobs []JobPosting, experiences []Experience, state FilterState) []FeedItem {
	items := make([]FeedItem, 0, len(jobs)+len(experiences))

	if state.IncludeJobs {
		for i := range jobs {
			job := &jobs[i]
			if job.Status != JobStatusActive {
				continue
			}
			items = append(items, FeedItem{
				Kind:      KindJob,
				Timestamp: job.PostedDate,
				Job:       job,
			})
		}
	}

	if state.IncludeExperiences {
		for i := range experiences {
			exp := &experiences[i]
			items = append(items, FeedItem{
				Kind:       KindExperience,
				Timestamp:  exp.UpdatedAt,
				Experience: exp,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID() < b.ID()
	})

	return items
}
