package health

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// statusValue maps a Status onto the conventional Prometheus up/degraded/
// down gauge scale: 0 is healthy, rising values are worse.
func statusValue(s Status) float64 {
	switch {
	case s.IsDown():
		return 2
	case s.IsOk():
		return 0
	default:
		return 1
	}
}

// Collector exposes a Reporter's health rollup as a single gauge metric,
// labeled by component name, scraped on demand rather than cached —
// every Collect call runs a fresh HealthCheck.
type Collector struct {
	reporter Reporter
	ctx      context.Context
	desc     *prometheus.Desc
}

// NewCollector wraps a Reporter as a prometheus.Collector. ctx bounds
// each on-demand HealthCheck run at scrape time.
func NewCollector(ctx context.Context, reporter Reporter) *Collector {
	return &Collector{
		reporter: reporter,
		ctx:      ctx,
		desc: prometheus.NewDesc(
			"component_health_status",
			"Component health status (0=ok, 1=degraded, 2=down)",
			[]string{"component"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector by running the wrapped
// Reporter's health check and emitting one gauge sample per component
// found while walking the resulting report tree.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	report := Reported(c.ctx, c.reporter)
	c.collectReport(ch, report)
}

func (c *Collector) collectReport(ch chan<- prometheus.Metric, report Report) {
	ch <- prometheus.MustNewConstMetric(
		c.desc, prometheus.GaugeValue, statusValue(report.OverallStatus()), report.Name,
	)
	for _, child := range report.Health.children() {
		c.collectReport(ch, child)
	}
}

// children returns the direct child reports of a ComponentHealth, if
// any — Composite and Additive nodes have children, Singular and the
// Intrinsic variants do not.
func (c ComponentHealth) children() []Report {
	switch c.kind {
	case kindComposite:
		all := append([]Report{}, c.composite.CompositeStatuses...)
		return append(all, c.composite.Additive.Components...)
	case kindAdditive:
		return c.additive.Components
	default:
		return nil
	}
}
