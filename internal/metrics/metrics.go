package metrics

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	drainWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "one_instance",
		Name:      "drain_wait_seconds",
		Help:      "Time spent waiting for a predecessor supervisor to vacate the channel.",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"channel"})

	predecessors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "one_instance",
		Name:      "predecessors_total",
		Help:      "Number of launches that found a running predecessor.",
	}, []string{"channel"})

	outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "one_instance",
		Name:      "outcomes_total",
		Help:      "Supervisor completions by outcome and cause.",
	}, []string{"channel", "outcome", "cause"})

	childRunning = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "one_instance",
		Name:      "child_running",
		Help:      "Whether the managed child is running (1=running, 0=stopped).",
	}, []string{"channel"})

	signalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "one_instance",
		Name:      "interrupt_failures_total",
		Help:      "Failed attempts to deliver the preemption signal to the child group.",
	}, []string{"channel"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "one_instance",
		Name:      "build_info",
		Help:      "Build metadata for the running one-instance binary.",
	}, []string{"channel", "go_version", "vcs_revision", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(drainWait, predecessors, outcomes, childRunning, signalFailures, buildInfo)
}

// Registry returns the Prometheus registry containing all supervisor metrics.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveDrain records how long the drain step took and whether a
// predecessor was present.
func ObserveDrain(channel string, d time.Duration, hadPredecessor bool) {
	drainWait.WithLabelValues(label(channel)).Observe(d.Seconds())
	if hadPredecessor {
		predecessors.WithLabelValues(label(channel)).Inc()
	}
}

// SetChildRunning records whether the managed child is alive.
func SetChildRunning(channel string, running bool) {
	value := 0.0
	if running {
		value = 1.0
	}
	childRunning.WithLabelValues(label(channel)).Set(value)
}

// RecordOutcome counts a finished supervisor run.
func RecordOutcome(channel, outcome, cause string) {
	outcomes.WithLabelValues(label(channel), outcome, cause).Inc()
}

// IncrementInterruptFailure counts a failed group interrupt.
func IncrementInterruptFailure(channel string) {
	signalFailures.WithLabelValues(label(channel)).Inc()
}

// WriteTextfile writes the registry in the text exposition format, for
// pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// EmitBuildInfo publishes build metadata for the binary supervising
// channel. Only the first call has an effect.
func EmitBuildInfo(channel string) {
	buildInfoOnce.Do(func() {
		goVersion, revision, modified := runtime.Version(), "", ""
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				goVersion = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					revision = setting.Value
				case "vcs.modified":
					modified = setting.Value
				}
			}
		}
		buildInfo.WithLabelValues(label(channel), goVersion, revision, modified).Set(1)
	})
}

// resetChannel clears the per-channel series.
func resetChannel(channel string) {
	channel = label(channel)
	drainWait.DeleteLabelValues(channel)
	predecessors.DeleteLabelValues(channel)
	childRunning.DeleteLabelValues(channel)
	signalFailures.DeleteLabelValues(channel)
	outcomes.DeletePartialMatch(prometheus.Labels{"channel": channel})
}

func label(channel string) string {
	if channel == "" {
		return "unknown"
	}
	return channel
}
