package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promMetrics = struct {
		virtualTime   prometheus.Gauge
		population    prometheus.Gauge
		arrivals      prometheus.Counter
		departures    prometheus.Counter
		serviceEvents prometheus.Counter
		maintenances  prometheus.Counter
	}{
		virtualTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "semimarkov_virtual_time_seconds",
			Help: "Current simulated virtual time",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "semimarkov_queue_population",
			Help: "Current number of customers in the queue",
		}),
		arrivals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semimarkov_arrivals_total",
			Help: "Total arrival events fired",
		}),
		departures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semimarkov_departures_total",
			Help: "Total departure (service completion) events fired",
		}),
		serviceEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semimarkov_service_events_total",
			Help: "Total service-clock events fired (alias of departures for the maintenance process)",
		}),
		maintenances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semimarkov_maintenance_events_total",
			Help: "Total maintenance start/end events fired",
		}),
	}
)

func initPrometheusMetrics() {
	prometheus.MustRegister(
		promMetrics.virtualTime,
		promMetrics.population,
		promMetrics.arrivals,
		promMetrics.departures,
		promMetrics.serviceEvents,
		promMetrics.maintenances,
	)
}

func updatePrometheusMetrics(kind string, now float64, population int) {
	promMetrics.virtualTime.Set(now)
	promMetrics.population.Set(float64(population))

	switch kind {
	case "arrival":
		promMetrics.arrivals.Inc()
	case "service":
		promMetrics.serviceEvents.Inc()
		promMetrics.departures.Inc()
	case "maintenance":
		promMetrics.maintenances.Inc()
	}
}

func promHandler() http.Handler {
	return promhttp.Handler()
}
