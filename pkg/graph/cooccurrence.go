package graph

import (
	"strings"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
)

const (
	// DefaultExampleLimit is the number of example titles kept per edge.
	DefaultExampleLimit = 3
	// ExampleSeparator joins example titles for display.
	ExampleSeparator = " | "

	// events above this many entities are logged; 50 entities already
	// produce 1225 pairs.
	denseEventEntities = 50
)

// pairKey identifies an unordered entity pair. Build it with newPairKey so
// that (a, b) and (b, a) collide.
type pairKey struct {
	a, b string
}

func newPairKey(x, y string) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// EdgeStat holds the co-occurrence statistics of one entity pair.
// Source < Target lexicographically and Count == len(Sentiments).
type EdgeStat struct {
	Source     string
	Target     string
	Count      int
	Sentiments []float64
	Examples   []string
}

// MeanSentiment returns the arithmetic mean of the sentiment samples, or 0
// when there are none.
func (s EdgeStat) MeanSentiment() float64 {
	if len(s.Sentiments) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Sentiments {
		sum += v
	}
	return sum / float64(len(s.Sentiments))
}

// Cooccurrence is the output of Aggregate: edge statistics keyed by
// canonical pair, in the order the pairs were first seen.
type Cooccurrence struct {
	stats map[pairKey]*EdgeStat
	order []pairKey
}

// Len returns the number of distinct pairs.
func (c *Cooccurrence) Len() int {
	return len(c.order)
}

// Stats returns a copy of every pair's statistics in first-seen order.
func (c *Cooccurrence) Stats() []EdgeStat {
	out := make([]EdgeStat, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, copyStat(c.stats[key]))
	}
	return out
}

// Stat returns the statistics for the pair (a, b) in either order.
func (c *Cooccurrence) Stat(a, b string) (EdgeStat, bool) {
	s, ok := c.stats[newPairKey(a, b)]
	if !ok {
		return EdgeStat{}, false
	}
	return copyStat(s), true
}

func copyStat(s *EdgeStat) EdgeStat {
	return EdgeStat{
		Source:     s.Source,
		Target:     s.Target,
		Count:      s.Count,
		Sentiments: append([]float64(nil), s.Sentiments...),
		Examples:   append([]string(nil), s.Examples...),
	}
}

// Aggregate counts, for every unordered pair of entities sharing an event,
// the number of events they share, one sentiment sample per shared event and
// up to exampleLimit example titles. A non-positive exampleLimit selects
// DefaultExampleLimit.
//
// Each event increments each of its pairs exactly once regardless of how
// many labels it carries. Events with fewer than two distinct entities are
// ignored; empty titles are never used as examples.
func Aggregate(events []common.Event, lookup SentimentLookup, exampleLimit int) *Cooccurrence {
	if exampleLimit <= 0 {
		exampleLimit = DefaultExampleLimit
	}

	c := &Cooccurrence{
		stats: make(map[pairKey]*EdgeStat),
	}

	for _, ev := range events {
		names := distinctNames(ev.Entities)
		if len(names) < 2 {
			continue
		}
		if len(names) > denseEventEntities {
			logger.Warn(
				"[Graph] Dense event",
				"title", ev.Title,
				"entities", len(names),
				"pairs", len(names)*(len(names)-1)/2,
			)
		}

		sentiment, _ := lookup.Resolve(ev.Labels)
		title := strings.TrimSpace(ev.Title)

		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				key := newPairKey(names[i], names[j])
				stat, ok := c.stats[key]
				if !ok {
					stat = &EdgeStat{Source: key.a, Target: key.b}
					c.stats[key] = stat
					c.order = append(c.order, key)
				}
				stat.Count++
				stat.Sentiments = append(stat.Sentiments, sentiment)
				if title != "" && len(stat.Examples) < exampleLimit {
					stat.Examples = append(stat.Examples, title)
				}
			}
		}
	}

	return c
}

func distinctNames(entities []string) []string {
	seen := make(map[string]struct{}, len(entities))
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		name := strings.TrimSpace(e)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
