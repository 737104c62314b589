package main

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "enhance"

// serveMetrics exposes the preview server on its own registry.
type serveMetrics struct {
	registry  *prom.Registry
	snapshots prom.Counter
	reloads   *prom.CounterVec
}

// newServeMetrics registers the counters and the image gauges of page.
func newServeMetrics(page livePage) *serveMetrics {
	m := &serveMetrics{
		registry: prom.NewRegistry(),
		snapshots: prom.NewCounter(prom.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "snapshots_served_total",
			Help:      "Page snapshots served on GET /",
		}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "page_reloads_total",
			Help:      "Page reloads by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(m.snapshots, m.reloads)
	m.registry.MustRegister(
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "images_loaded",
			Help:      "Deferred images loaded so far",
		}, func() float64 { return float64(page.ImagesLoaded()) }),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "images_pending",
			Help:      "Deferred images still waiting in a chain",
		}, func() float64 { return float64(page.ImagesPending()) }),
	)
	m.registry.MustRegister(promcollect.NewGoCollector())
	return m
}

func (m *serveMetrics) snapshotServed() {
	m.snapshots.Inc()
}

func (m *serveMetrics) reloaded(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *serveMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
