package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is the session state exported as gauges.
type Snapshot struct {
	Active       bool
	Elapsed      time.Duration
	Sessions     int
	Tags         int
	Associations int
}

// Metrics holds the Prometheus gauges describing sesh state. Each
// invocation rewrites all of them.
type Metrics struct {
	registry *prometheus.Registry

	SessionActive        prometheus.Gauge
	ActiveElapsedSeconds prometheus.Gauge
	SessionsRecorded     prometheus.Gauge
	TagsKnown            prometheus.Gauge
	TagAssociations      prometheus.Gauge
	LastCommand          *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		SessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sesh_session_active",
			Help: "1 if a session is in progress, 0 otherwise",
		}),
		ActiveElapsedSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sesh_active_elapsed_seconds",
			Help: "Seconds since the active session started",
		}),
		SessionsRecorded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sesh_sessions_recorded",
			Help: "Completed sessions in the ledger",
		}),
		TagsKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sesh_tags_known",
			Help: "Distinct tags in the ledger",
		}),
		TagAssociations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sesh_tag_associations",
			Help: "Session to tag links in the ledger",
		}),
		LastCommand: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sesh_last_command_timestamp_seconds",
				Help: "Unix time of the last sesh command",
			},
			[]string{"command", "status"},
		),
	}

	registry.MustRegister(
		m.SessionActive,
		m.ActiveElapsedSeconds,
		m.SessionsRecorded,
		m.TagsKnown,
		m.TagAssociations,
		m.LastCommand,
	)

	return m
}

// Observe sets the state gauges from snap.
func (m *Metrics) Observe(snap Snapshot) {
	if snap.Active {
		m.SessionActive.Set(1)
		m.ActiveElapsedSeconds.Set(snap.Elapsed.Seconds())
	} else {
		m.SessionActive.Set(0)
		m.ActiveElapsedSeconds.Set(0)
	}
	m.SessionsRecorded.Set(float64(snap.Sessions))
	m.TagsKnown.Set(float64(snap.Tags))
	m.TagAssociations.Set(float64(snap.Associations))
}

// RecordCommand stamps the completion time of a command.
func (m *Metrics) RecordCommand(command string, err error, at time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LastCommand.WithLabelValues(command, status).Set(float64(at.Unix()))
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
