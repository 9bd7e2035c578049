package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stats prints the client's counters and save latency.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "syncdraft_")
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, p := range m.GetLabel() {
				labels = append(labels, p.GetName()+"="+p.GetValue())
			}
			label := name
			if len(labels) > 0 {
				label += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%-48s %s", label, humanize.Comma(int64(m.GetCounter().GetValue()))))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				avg := 0.0
				if h.GetSampleCount() > 0 {
					avg = h.GetSampleSum() / float64(h.GetSampleCount()) * 1000
				}
				lines = append(lines, fmt.Sprintf("%-48s %s samples, avg %s ms",
					label, humanize.Comma(int64(h.GetSampleCount())), humanize.FtoaWithDigits(avg, 1)))
			}
		}
	}

	if len(lines) == 0 {
		printlnFn("No activity yet.")
		return nil
	}
	sort.Strings(lines)
	for _, l := range lines {
		printlnFn(l)
	}
	return nil
}
