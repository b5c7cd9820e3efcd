package report

import (
	"fmt"
	"strings"
	"time"
)

// Source is a titled URL attached to a finding by a collaborator.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Item is one entry of the final digest.
type Item struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Sources []string `json:"sources"`
}

// Report is the run's final output and the only state that survives a run;
// the next day's pass reads it back as history.
type Report struct {
	Date     time.Time `json:"date"`
	Comments string    `json:"comments"`
	News     []Item    `json:"news"`
}

// Titles returns the item titles, the input to cross-run dedup.
func (r Report) Titles() []string {
	out := make([]string, 0, len(r.News))
	for _, item := range r.News {
		out = append(out, item.Title)
	}
	return out
}

// Markdown renders the report for human review.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Daily Research Digest\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.Date.Format("2006-01-02 15:04:05"))

	if r.Comments != "" {
		b.WriteString("## Research Notes\n\n")
		b.WriteString(r.Comments)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## News Items (%d found)\n\n", len(r.News))
	if len(r.News) == 0 {
		b.WriteString("*No news items found.*\n")
		return b.String()
	}
	for i, item := range r.News {
		fmt.Fprintf(&b, "### %d. %s\n\n%s\n\n", i+1, item.Title, item.Body)
		if len(item.Sources) > 0 {
			b.WriteString("**Sources:**\n")
			for _, src := range item.Sources {
				fmt.Fprintf(&b, "- %s\n", src)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}
