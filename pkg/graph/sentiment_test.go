package graph

import (
	"math"
	"testing"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"

	"github.com/stretchr/testify/assert"
)

func sentiment(v float64) *float64 { return &v }

func testTaxonomy() common.Taxonomy {
	return common.Taxonomy{Categories: []common.TaxonomyCategory{
		{
			Name: "Diplomacy",
			Labels: []common.TaxonomyLabel{
				{Name: "Agreement", Sentiment: sentiment(6)},
				{Name: "Meeting", Sentiment: sentiment(2)},
				{Name: "Statement"},
			},
		},
		{
			Name: "Conflict",
			Labels: []common.TaxonomyLabel{
				{Name: "Threat", Sentiment: sentiment(-2)},
				{Name: "Clash", Sentiment: sentiment(-5)},
				{Name: "Broken", Sentiment: sentiment(math.NaN())},
			},
		},
	}}
}

func TestNewSentimentLookup(t *testing.T) {
	lookup := NewSentimentLookup(testTaxonomy())

	assert.Len(t, lookup, 4)
	assert.NotContains(t, lookup, "Statement")
	assert.NotContains(t, lookup, "Broken")
	assert.Equal(t, -5.0, lookup["Clash"])
}

func TestNewSentimentLookupLastDeclarationWins(t *testing.T) {
	tax := common.Taxonomy{Categories: []common.TaxonomyCategory{
		{Name: "First", Labels: []common.TaxonomyLabel{{Name: "Dup", Sentiment: sentiment(1)}}},
		{Name: "Second", Labels: []common.TaxonomyLabel{{Name: "Dup", Sentiment: sentiment(-3)}}},
	}}

	assert.Equal(t, -3.0, NewSentimentLookup(tax)["Dup"])
}

func TestResolve(t *testing.T) {
	lookup := NewSentimentLookup(testTaxonomy())

	tests := []struct {
		name    string
		labels  []string
		want    float64
		matched bool
	}{
		{name: "no labels", labels: nil, want: 0, matched: false},
		{name: "only unknown labels", labels: []string{"Unknown", "Statement"}, want: 0, matched: false},
		{name: "single label", labels: []string{"Clash"}, want: -5, matched: true},
		{name: "mean of matched labels", labels: []string{"Agreement", "Threat"}, want: 2, matched: true},
		{name: "unmatched labels are ignored", labels: []string{"Agreement", "Unknown"}, want: 6, matched: true},
		{name: "duplicates count twice", labels: []string{"Agreement", "Agreement", "Threat"}, want: 10.0 / 3, matched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookup.Resolve(tt.labels)
			assert.Equal(t, tt.matched, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
