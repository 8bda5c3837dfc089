// Package metrics exports phasefair lock statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/llxisdsh/phasefair"
)

// StatsSource is anything that can report lock statistics, typically a
// *phasefair.RWLock.
type StatsSource interface {
	Stats() phasefair.Stats
}

// Collector is a prometheus.Collector for one lock. Every metric carries a
// constant "lock" label with the name given to NewCollector.
//
// Usage:
//
//	var l phasefair.RWLock
//	prometheus.MustRegister(metrics.NewCollector("catalog", &l))
type Collector struct {
	src StatsSource

	phase          *prometheus.Desc
	readersRunning *prometheus.Desc
	readersWaiting *prometheus.Desc
	writersQueued  *prometheus.Desc

	fastPaths   *prometheus.Desc
	suspensions *prometheus.Desc
	handoffs    *prometheus.Desc
	readPhases  *prometheus.Desc
	timeouts    *prometheus.Desc
	tickets     *prometheus.Desc
}

// NewCollector creates a Collector reporting src under the lock label name.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"lock": name}
	desc := func(metric, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("phasefair", "", metric), help, variable, labels)
	}
	return &Collector{
		src:            src,
		phase:          desc("phase", "Current phase: 0 idle, 1 readers draining, 2 writer handoff, 3 writer active."),
		readersRunning: desc("readers_running", "Readers holding the lock."),
		readersWaiting: desc("readers_waiting", "Readers parked until the next reading phase."),
		writersQueued:  desc("writers_queued", "Writers in the FIFO queue."),
		fastPaths:      desc("fast_paths_total", "Acquisitions that neither queued nor parked.", "mode"),
		suspensions:    desc("suspensions_total", "Times a goroutine parked on the lock."),
		handoffs:       desc("handoffs_total", "Targeted wakes of the head writer."),
		readPhases:     desc("read_phases_total", "Batches of waiting readers admitted together."),
		timeouts:       desc("timeouts_total", "Acquisitions that gave up after waiting.", "mode"),
		tickets:        desc("tickets_total", "Writer tickets taken from the pool, by origin.", "origin"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.phase
	ch <- c.readersRunning
	ch <- c.readersWaiting
	ch <- c.writersQueued
	ch <- c.fastPaths
	ch <- c.suspensions
	ch <- c.handoffs
	ch <- c.readPhases
	ch <- c.timeouts
	ch <- c.tickets
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v uint64, label ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), label...)
	}

	gauge(c.phase, float64(s.Phase))
	gauge(c.readersRunning, float64(s.ReadersRunning))
	gauge(c.readersWaiting, float64(s.ReadersWaiting))
	gauge(c.writersQueued, float64(s.WritersQueued))

	counter(c.fastPaths, s.WriteFastPaths, "write")
	counter(c.fastPaths, s.ReadFastPaths, "read")
	counter(c.suspensions, s.Suspensions)
	counter(c.handoffs, s.Handoffs)
	counter(c.readPhases, s.ReadPhases)
	counter(c.timeouts, s.WriteTimeouts, "write")
	counter(c.timeouts, s.ReadTimeouts, "read")
	counter(c.tickets, s.TicketsAllocated, "allocated")
	counter(c.tickets, s.TicketsReused, "reused")
}
