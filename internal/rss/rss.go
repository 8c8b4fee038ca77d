// Package rss renders the visitor-visible home feed as RSS 2.0 so the
// merged stream can be followed from a reader.
package rss

import (
	"encoding/xml"
	"fmt"
	"time"

	"gainfully/internal/feed"
)

// RSS is the root element of an RSS feed.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel represents the channel element in an RSS feed.
type Channel struct {
	XMLName       xml.Name `xml:"channel"`
	Title         string   `xml:"title"`
	Link          string   `xml:"link"`
	Description   string   `xml:"description"`
	LastBuildDate string   `xml:"lastBuildDate,omitempty"` // RFC1123Z
	Items         []Item   `xml:"item"`
}

// Item represents an item element in an RSS feed.
type Item struct {
	XMLName     xml.Name `xml:"item"`
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"` // RFC1123Z
	GUID        string   `xml:"guid,omitempty"`
	Category    string   `xml:"category,omitempty"`
}

// Build converts an already-filtered item sequence into an RSS document.
// Job items are titled with the employer name and experience items with the
// connected user's name; unresolved entities fall back to the bare title.
func Build(siteTitle, siteURL string, items []feed.FeedItem, snap *feed.Snapshot) RSS {
	channel := Channel{
		Title:         siteTitle,
		Link:          siteURL,
		Description:   "Job postings and network updates",
		LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
	}

	for _, item := range items {
		var out Item
		switch item.Kind {
		case feed.KindJob:
			job := item.Job
			out = Item{
				Title:       job.Title,
				Link:        fmt.Sprintf("%s/jobs/%d", siteURL, job.ID),
				Description: job.Description,
				GUID:        fmt.Sprintf("job-%d", job.ID),
				Category:    "job",
			}
			if name := snap.EmployerName(job.EmployerID); name != "" {
				out.Title = fmt.Sprintf("%s at %s", job.Title, name)
			}
		case feed.KindExperience:
			exp := item.Experience
			out = Item{
				Title:       exp.Title,
				Link:        fmt.Sprintf("%s/experiences/%d", siteURL, exp.ID),
				Description: exp.Description,
				GUID:        fmt.Sprintf("experience-%d", exp.ID),
				Category:    "experience",
			}
		}
		out.PubDate = time.UnixMilli(item.Timestamp).UTC().Format(time.RFC1123Z)
		channel.Items = append(channel.Items, out)
	}

	return RSS{Version: "2.0", Channel: channel}
}
