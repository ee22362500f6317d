package graph

import (
	"math"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
)

// SentimentLookup maps a classification label to its sentiment score.
// Build it once per taxonomy with NewSentimentLookup.
type SentimentLookup map[string]float64

// NewSentimentLookup flattens a taxonomy into a label lookup. Labels without
// a finite numeric sentiment are left out. A label declared in more than one
// category takes the value of its last declaration.
func NewSentimentLookup(taxonomy common.Taxonomy) SentimentLookup {
	lookup := make(SentimentLookup, taxonomy.LabelCount())
	for _, category := range taxonomy.Categories {
		for _, label := range category.Labels {
			if label.Sentiment == nil {
				continue
			}
			s := *label.Sentiment
			if math.IsNaN(s) || math.IsInf(s, 0) {
				continue
			}
			lookup[label.Name] = s
		}
	}
	return lookup
}

// Resolve returns the mean sentiment of every label present in the lookup.
// The boolean is false, and the score 0, when no label matched.
func (l SentimentLookup) Resolve(labels []string) (float64, bool) {
	sum := 0.0
	matched := 0
	for _, label := range labels {
		if s, ok := l[label]; ok {
			sum += s
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}
	return sum / float64(matched), true
}
