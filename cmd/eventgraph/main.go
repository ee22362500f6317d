package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/util"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	ioloader "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger/console"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/report"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

func main() {
	util.LoadEnv()

	defaults := graph.DefaultFilterParams()
	var (
		eventsPath    = flag.String("events", "", "Path to the events JSON file (- for stdin)")
		taxonomyPath  = flag.String("taxonomy", "", "Path to the taxonomy JSON file")
		csvPath       = flag.String("csv", storage.CentralityExportName, "Output path of the centrality CSV (empty to skip)")
		by            = flag.String("by", string(report.MeasureDegree), "Ranking measure: degree, betweenness or eigenvector")
		limit         = flag.Int("limit", report.DefaultTopLimit, "Number of entities to print")
		minWeight     = flag.Int("min-weight", defaults.MinWeight, "Minimum edge weight of the view")
		sentimentLow  = flag.Float64("sentiment-low", defaults.SentimentLow, "Lower sentiment bound of the view")
		sentimentHigh = flag.Float64("sentiment-high", defaults.SentimentHigh, "Upper sentiment bound of the view")
		recompute     = flag.Bool("recompute", false, "Recompute centrality on the filtered view")
		verbose       = flag.Bool("verbose", util.GetEnvBool("DEBUG", false), "Verbose logging")
	)
	flag.Parse()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: *verbose}))

	if *eventsPath == "" || *taxonomyPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	measure, err := report.ParseMeasure(*by)
	if err != nil {
		logger.Fatal("[Graph] Invalid ranking measure", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := pipeline.NewGraphClientFromEnv()
	if err != nil {
		logger.Fatal("[Graph] Invalid graph configuration", "err", err)
	}
	p := pipeline.New(client, nil)

	sources := ioloader.NewIOGraphFileLoader()
	snap, err := p.RunFiles(
		ctx,
		pipeline.OriginFile,
		*eventsPath,
		loader.NewGraphEventsFile(loader.NewGraphFileParams{FilePath: *eventsPath, Loader: sources}),
		loader.NewGraphTaxonomyFile(loader.NewGraphFileParams{FilePath: *taxonomyPath, Loader: sources}),
	)
	if err != nil {
		logger.Fatal("[Graph] Failed to build graph", "err", err)
	}

	params := graph.FilterParams{MinWeight: *minWeight, SentimentLow: *sentimentLow, SentimentHigh: *sentimentHigh}
	view, warnings := selectView(p, snap, params, *recompute)
	for _, w := range warnings {
		logger.Warn("[Graph] " + w)
	}

	if err := printTop(os.Stdout, report.TopEntities(view, measure, *limit)); err != nil {
		logger.Fatal("[Graph] Failed to print entities", "err", err)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, view); err != nil {
			logger.Fatal("[Graph] Failed to write CSV", "path", *csvPath, "err", err)
		}
		logger.Info("[Graph] Wrote centrality CSV", "path", *csvPath, "nodes", view.NodeCount())
	}
}

// selectView returns the graph to report on. Without filter flags that is
// the scored full graph, and recompute has nothing to rescore.
func selectView(p *pipeline.Pipeline, snap store.Snapshot, params graph.FilterParams, recompute bool) (*graph.Graph, []string) {
	if params == graph.DefaultFilterParams() {
		if recompute {
			logger.Warn("[Graph] -recompute has no effect without filter flags, the full graph is already scored")
		}
		return snap.Graph, snap.Warnings
	}

	view := graph.Filter(snap.Graph, params)
	if !recompute {
		return view, snap.Warnings
	}
	return p.Recompute(view)
}

func printTop(out *os.File, rows []report.EntityRow) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tDEGREE\tBETWEENNESS\tEIGENVECTOR")
	for _, r := range rows {
		eigen := fmt.Sprintf("%.4f", r.Eigenvector)
		if r.EigenvectorFailed {
			eigen = "-"
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%s\n", r.Entity, r.Degree, r.Betweenness, eigen)
	}
	return w.Flush()
}

func writeCSV(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCentralityCSV(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
