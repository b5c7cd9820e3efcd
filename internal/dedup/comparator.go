package dedup

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/analysis/tokenizer/whitespace"
)

// titleAnalyzer tokenizes on whitespace only, keeping every token of the
// already-normalized title. The standard analyzer's stopword removal would
// make titles built from common words invisible to the shortlist.
const titleAnalyzer = "title_tokens"

// Comparator decides whether a candidate title repeats an item from the
// previous run. The decision is a deterministic token-overlap threshold;
// an in-memory bleve index shortlists candidates so the comparison stays
// near-linear even for large histories.
type Comparator struct {
	threshold float64
	index     bleve.Index
	byID      map[string]string // doc ID -> normalized history title
}

type indexedTitle struct {
	Title string `json:"title"`
}

// NewComparator indexes the previous run's titles. An empty history yields
// a comparator that matches nothing.
func NewComparator(threshold float64, history []string) (*Comparator, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("dedup threshold must be in (0,1], got %f", threshold)
	}
	mapping := bleve.NewIndexMapping()
	if err := mapping.AddCustomAnalyzer(titleAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	}); err != nil {
		return nil, fmt.Errorf("registering dedup analyzer: %w", err)
	}
	mapping.DefaultAnalyzer = titleAnalyzer
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("creating dedup index: %w", err)
	}
	c := &Comparator{
		threshold: threshold,
		index:     index,
		byID:      make(map[string]string, len(history)),
	}
	for i, title := range history {
		norm := Normalize(title)
		if norm == "" {
			continue
		}
		id := strconv.Itoa(i)
		if err := index.Index(id, indexedTitle{Title: norm}); err != nil {
			return nil, fmt.Errorf("indexing history title: %w", err)
		}
		c.byID[id] = norm
	}
	return c, nil
}

// Threshold returns the configured similarity cutoff.
func (c *Comparator) Threshold() float64 { return c.threshold }

// Match reports whether the title's similarity to any history item reaches
// the threshold, returning the matched history title. Any pair at or above
// the threshold shares tokens, so the term query always retrieves it; the
// linear scan only runs if the index search fails.
func (c *Comparator) Match(title string) (string, bool) {
	norm := Normalize(title)
	if norm == "" || len(c.byID) == 0 {
		return "", false
	}
	query := bleve.NewMatchQuery(norm)
	query.Analyzer = titleAnalyzer
	searchReq := bleve.NewSearchRequestOptions(query, len(c.byID), 0, false)
	res, err := c.index.Search(searchReq)
	if err != nil {
		return c.scan(norm)
	}
	for _, hit := range res.Hits {
		cand := c.byID[hit.ID]
		if Similarity(norm, cand) >= c.threshold {
			return cand, true
		}
	}
	return "", false
}

func (c *Comparator) scan(norm string) (string, bool) {
	for _, cand := range c.byID {
		if Similarity(norm, cand) >= c.threshold {
			return cand, true
		}
	}
	return "", false
}

// Close releases the underlying index.
func (c *Comparator) Close() error {
	return c.index.Close()
}
