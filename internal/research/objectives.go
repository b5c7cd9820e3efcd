package research

import (
	"fmt"
	"time"
)

// Every objective embeds the explicit run date and a last-24-hours scope so
// collaborators never fall back to stale or undated results.

func dateScope(date time.Time) string {
	return fmt.Sprintf("Today is %s. Only consider developments from the last 24 hours.", date.Format("January 2, 2006"))
}

// searchObjective formulates (and on retry reformulates) the search task for
// a topic: the first attempt is the plain objective, the second narrows to
// concrete announcements, later attempts broaden the scope.
func searchObjective(t *Topic, date time.Time, attempt int) string {
	base := fmt.Sprintf("Find news about %s. %s", t.Name, dateScope(date))
	switch {
	case attempt <= 1:
		return base
	case attempt == 2:
		return fmt.Sprintf("Find concrete announcements, releases or official statements about %s. %s", t.Name, dateScope(date))
	default:
		return fmt.Sprintf("Find any notable development related to %s or the wider %s space. %s", t.Name, t.Category, dateScope(date))
	}
}

// discoveryObjective is deliberately open-ended: it asks for entities and
// stories outside the planned catalogue.
func discoveryObjective(date time.Time, ordinal int) string {
	return fmt.Sprintf("Survey today's notable stories and name organizations, products or people making news that a fixed watchlist would miss (pass %d). %s", ordinal, dateScope(date))
}

// socialObjective is built from the topic category only. Naming a specific
// entity here would bias what the social collaborator surfaces, so the
// topic name never appears.
func socialObjective(category string, date time.Time) string {
	if category == "" {
		category = "the field"
	}
	return fmt.Sprintf("What is being widely discussed in %s communities right now? Report the prevailing chatter without filtering for confirmation. %s", category, dateScope(date))
}

// videoObjective asks the video collaborator to inspect specific videos.
func videoObjective(title string, date time.Time) string {
	return fmt.Sprintf("Watch the listed videos and summarize what they show about %q. %s", title, dateScope(date))
}

// alternateObjective re-dispatches a finding whose sources all failed
// verification, asking for different outlets covering the same story.
func alternateObjective(title string, date time.Time) string {
	return fmt.Sprintf("Find alternative sources from different outlets covering %q. %s", title, dateScope(date))
}
