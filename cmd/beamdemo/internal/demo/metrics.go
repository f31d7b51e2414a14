package demo

import (
	"fmt"
	"io"

	"github.com/ygrebnov/beam/metrics"
)

func printMetrics(w io.Writer, p *metrics.BasicProvider) {
	fmt.Fprintln(w, "metrics:")
	for _, name := range []string{
		metrics.RoutinesSpawned,
		metrics.RoutinePanics,
		metrics.ReactorCommits,
		metrics.StoreFlushes,
		metrics.StoreFlushFailures,
	} {
		fmt.Fprintf(w, "  %s=%d\n", name, p.Counter(name).(*metrics.BasicCounter).Snapshot())
	}
	for _, name := range []string{
		metrics.RoutinesRunning,
		metrics.StoreBufferedValues,
	} {
		fmt.Fprintf(w, "  %s=%d\n", name, p.UpDownCounter(name).(*metrics.BasicUpDownCounter).Snapshot())
	}
	dur := p.Histogram(metrics.ReactorCommitDuration).(*metrics.BasicHistogram).Snapshot()
	fmt.Fprintf(w, "  %s: count=%d mean=%.6fs\n", metrics.ReactorCommitDuration, dur.Count, dur.Mean)
}
