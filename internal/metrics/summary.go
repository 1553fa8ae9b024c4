package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Summary gathers the default registry and renders every series as one
// "name{labels} value" line, sorted by name for stable output.
func Summary() ([]string, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "rekordbox_migrator_") {
			continue
		}
		for _, m := range fam.GetMetric() {
			lines = append(lines, renderMetric(fam, m))
		}
	}

	sort.Strings(lines)
	return lines, nil
}

func renderMetric(fam *dto.MetricFamily, m *dto.Metric) string {
	name := fam.GetName()
	if labels := renderLabels(m); labels != "" {
		name += "{" + labels + "}"
	}

	switch fam.GetType() {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%s %v", name, m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%s %v", name, m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("%s count=%d sum=%.6fs", name, h.GetSampleCount(), h.GetSampleSum())
	default:
		return fmt.Sprintf("%s <%s>", name, fam.GetType())
	}
}

func renderLabels(m *dto.Metric) string {
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return strings.Join(pairs, ",")
}
