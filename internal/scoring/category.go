package scoring

import (
	"encoding/json"
	"fmt"
)

// Entry is one labelled sub-metric score
type Entry struct {
	Label string `json:"label"`
	Score Score  `json:"score"`
}

// CategoryScoreSet is an immutable set of sub-metric scores with one entry
// designated as the category's overall score
type CategoryScoreSet struct {
	category   string
	overallKey string
	entries    []Entry
}

// NewCategoryScoreSet builds a score set. overallKey must label one of the
// entries and every score must be in [0, 100].
func NewCategoryScoreSet(category, overallKey string, entries ...Entry) (CategoryScoreSet, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.Score.Valid() {
			return CategoryScoreSet{}, fmt.Errorf("%w: %s %q = %d", ErrScoreOutOfRange, category, e.Label, e.Score)
		}
		if seen[e.Label] {
			return CategoryScoreSet{}, fmt.Errorf("%w: %s %q", ErrDuplicateLabel, category, e.Label)
		}
		seen[e.Label] = true
	}
	if !seen[overallKey] {
		return CategoryScoreSet{}, fmt.Errorf("%w: %s has no %q entry", ErrMissingOverall, category, overallKey)
	}

	return CategoryScoreSet{
		category:   category,
		overallKey: overallKey,
		entries:    append([]Entry(nil), entries...),
	}, nil
}

// MustCategoryScoreSet is NewCategoryScoreSet for fixed, known-good values
func MustCategoryScoreSet(category, overallKey string, entries ...Entry) CategoryScoreSet {
	s, err := NewCategoryScoreSet(category, overallKey, entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Category returns the category name
func (c CategoryScoreSet) Category() string {
	return c.category
}

// OverallKey returns the label of the overall entry
func (c CategoryScoreSet) OverallKey() string {
	return c.overallKey
}

// Overall returns the category's overall score
func (c CategoryScoreSet) Overall() Score {
	s, _ := c.Get(c.overallKey)
	return s
}

// Get returns the score for a label
func (c CategoryScoreSet) Get(label string) (Score, bool) {
	for _, e := range c.entries {
		if e.Label == label {
			return e.Score, true
		}
	}
	return 0, false
}

// Entries returns a copy of the entries in insertion order
func (c CategoryScoreSet) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Map returns the entries keyed by label
func (c CategoryScoreSet) Map() map[string]Score {
	m := make(map[string]Score, len(c.entries))
	for _, e := range c.entries {
		m[e.Label] = e.Score
	}
	return m
}

// MarshalJSON encodes the set as {category, overall_key, overall, scores}
func (c CategoryScoreSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category   string           `json:"category"`
		OverallKey string           `json:"overall_key"`
		Overall    Score            `json:"overall"`
		Scores     map[string]Score `json:"scores"`
	}{
		Category:   c.category,
		OverallKey: c.overallKey,
		Overall:    c.Overall(),
		Scores:     c.Map(),
	})
}
