// Package report turns scored graphs into tables and display values.
package report

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
)

// DefaultTopLimit is the number of rows in a top entities table.
const DefaultTopLimit = 20

// Measure names a centrality score.
type Measure string

const (
	MeasureDegree      Measure = "degree"
	MeasureBetweenness Measure = "betweenness"
	MeasureEigenvector Measure = "eigenvector"
)

// ParseMeasure parses a measure name; the empty string selects degree.
func ParseMeasure(s string) (Measure, error) {
	switch m := Measure(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MeasureDegree, nil
	case MeasureDegree, MeasureBetweenness, MeasureEigenvector:
		return m, nil
	default:
		return "", fmt.Errorf("unknown centrality measure %q", s)
	}
}

func (m Measure) value(s graph.Scores) float64 {
	switch m {
	case MeasureBetweenness:
		return s.Betweenness
	case MeasureEigenvector:
		return s.Eigenvector
	default:
		return s.Degree
	}
}

// EntityRow is one line of a centrality table.
type EntityRow struct {
	Entity            string  `json:"entity"`
	Degree            float64 `json:"degree"`
	Betweenness       float64 `json:"betweenness"`
	Eigenvector       float64 `json:"eigenvector"`
	EigenvectorFailed bool    `json:"eigenvector_failed,omitempty"`
}

// Rows returns one row per node in graph order.
func Rows(g *graph.Graph) []EntityRow {
	nodes := g.Nodes()
	rows := make([]EntityRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, EntityRow{
			Entity:            n.Name,
			Degree:            n.Degree,
			Betweenness:       n.Betweenness,
			Eigenvector:       n.Eigenvector,
			EigenvectorFailed: n.EigenvectorFailed,
		})
	}
	return rows
}

// TopEntities returns the limit highest-ranked nodes by m, ties broken by
// name. A non-positive limit selects DefaultTopLimit.
func TopEntities(g *graph.Graph, m Measure, limit int) []EntityRow {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	rows := Rows(g)
	slices.SortStableFunc(rows, func(a, b EntityRow) int {
		va := m.value(graph.Scores{Degree: a.Degree, Betweenness: a.Betweenness, Eigenvector: a.Eigenvector})
		vb := m.value(graph.Scores{Degree: b.Degree, Betweenness: b.Betweenness, Eigenvector: b.Eigenvector})
		if c := cmp.Compare(vb, va); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// CSVHeader is the header row written by WriteCentralityCSV.
var CSVHeader = []string{"Entity", "Degree", "Betweenness", "Eigenvector"}

// WriteCentralityCSV writes every node's scores as CSV. Failed eigenvector
// scores are written as empty cells.
func WriteCentralityCSV(w io.Writer, g *graph.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range Rows(g) {
		eigen := formatFloat(r.Eigenvector)
		if r.EigenvectorFailed {
			eigen = ""
		}
		record := []string{r.Entity, formatFloat(r.Degree), formatFloat(r.Betweenness), eigen}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SentimentColor maps an edge sentiment to an rgb() colour: shades of red
// below -1, shades of green above 1 and grey in between. Values are clipped
// to [-10, 10] and intensity saturates at 9.
func SentimentColor(sentiment float64) string {
	if math.IsNaN(sentiment) {
		sentiment = 0
	}
	s := max(-10, min(10, sentiment))
	switch {
	case s < -1:
		i := int(255 * (min(9, math.Abs(s)) / 10))
		return fmt.Sprintf("rgb(255,%d,%d)", 255-i, 255-i)
	case s > 1:
		i := int(255 * (min(9, s) / 10))
		return fmt.Sprintf("rgb(%d,255,%d)", 255-i, 255-i)
	default:
		return "rgb(200,200,200)"
	}
}

// EventType classifies a sentiment by its sign.
type EventType string

const (
	EventCooperation EventType = "Cooperation"
	EventConflict    EventType = "Conflict"
	EventNeutral     EventType = "Neutral"
)

func EventTypeOf(sentiment float64) EventType {
	switch {
	case sentiment > 0:
		return EventCooperation
	case sentiment < 0:
		return EventConflict
	default:
		return EventNeutral
	}
}

// ColoredEdge is an edge decorated for display.
type ColoredEdge struct {
	graph.Edge
	Color string
	Type  EventType
}

func (e ColoredEdge) MarshalJSON() ([]byte, error) {
	type coloredEdgeJSON struct {
		Source    string    `json:"source"`
		Target    string    `json:"target"`
		Weight    int       `json:"weight"`
		Sentiment float64   `json:"sentiment"`
		Examples  string    `json:"examples"`
		Color     string    `json:"color"`
		Type      EventType `json:"event_type"`
	}
	return json.Marshal(coloredEdgeJSON{
		Source:    e.Source,
		Target:    e.Target,
		Weight:    e.Weight,
		Sentiment: e.Sentiment,
		Examples:  e.ExamplesText(),
		Color:     e.Color,
		Type:      e.Type,
	})
}

// DecorateEdges returns the edges of g with their display colour and type.
func DecorateEdges(g *graph.Graph) []ColoredEdge {
	edges := g.Edges()
	out := make([]ColoredEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, ColoredEdge{
			Edge:  e,
			Color: SentimentColor(e.Sentiment),
			Type:  EventTypeOf(e.Sentiment),
		})
	}
	return out
}
