package gateway

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/daybrief/internal/report"
)

// Kind identifies which collaborator a task targets. The three kinds share
// one request/response contract but carry different trust semantics.
type Kind string

const (
	KindSearch Kind = "search"
	KindVideo  Kind = "video"
	KindSocial Kind = "social"
)

// ErrUnavailable wraps transport failures that indicate the collaborator
// endpoint itself cannot be reached.
var ErrUnavailable = errors.New("collaborator unavailable")

// Task is one dispatch to a collaborator. The objective always embeds the
// explicit run date and a last-24-hours scope.
type Task struct {
	Objective  string   `json:"objective"`
	Kind       Kind     `json:"-"`
	TargetURLs []string `json:"target_urls,omitempty"`
	Attempt    int      `json:"-"`
}

// Result is one item of a collaborator response.
type Result struct {
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
	Sources []report.Source `json:"sources"`
}

// Response is the uniform collaborator reply.
type Response struct {
	Results []Result `json:"results"`
}

// Empty reports whether the response carries no usable content.
func (r Response) Empty() bool {
	for _, res := range r.Results {
		if res.Title != "" || res.Summary != "" {
			return false
		}
	}
	return true
}

// Size approximates the input units the response will consume downstream.
func (r Response) Size() int64 {
	var total int64
	for _, res := range r.Results {
		total += int64(len(res.Title) + len(res.Summary))
		for _, src := range res.Sources {
			total += int64(len(src.Title) + len(src.URL))
		}
	}
	return total
}

// Gateway dispatches tasks to collaborators. Implementations must honor the
// context deadline; the controller treats a timeout like an empty result.
type Gateway interface {
	Dispatch(ctx context.Context, task Task) (Response, error)
}
