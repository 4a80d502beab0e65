package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTextfileExposesMetrics(t *testing.T) {
	channel := "one_instance_metrics_test"
	t.Cleanup(func() { resetChannel(channel) })

	EmitBuildInfo(channel)
	ObserveDrain(channel, 20*time.Millisecond, true)
	SetChildRunning(channel, true)
	RecordOutcome(channel, "preempted", "successor")
	IncrementInterruptFailure(channel)

	path := filepath.Join(t.TempDir(), "one_instance.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	body := string(data)

	for _, line := range []string{
		`one_instance_predecessors_total{channel="one_instance_metrics_test"} 1`,
		`one_instance_child_running{channel="one_instance_metrics_test"} 1`,
		`one_instance_outcomes_total{cause="successor",channel="one_instance_metrics_test",outcome="preempted"} 1`,
		`one_instance_interrupt_failures_total{channel="one_instance_metrics_test"} 1`,
		`one_instance_drain_wait_seconds_count{channel="one_instance_metrics_test"} 1`,
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected metric line %q in body:\n%s", line, body)
		}
	}
	var buildLine string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "one_instance_build_info{") {
			buildLine = line
		}
	}
	if !strings.Contains(buildLine, `channel="one_instance_metrics_test"`) || !strings.Contains(buildLine, "go_version=") {
		t.Fatalf("expected build info labelled with the channel in body:\n%s", body)
	}
}

func TestDrainWithoutPredecessorDoesNotCount(t *testing.T) {
	channel := "one_instance_metrics_first_run"
	t.Cleanup(func() { resetChannel(channel) })

	ObserveDrain(channel, 0, false)

	families, err := Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "one_instance_predecessors_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "channel" && pair.GetValue() == channel {
					t.Fatalf("unexpected predecessor sample for %s", channel)
				}
			}
		}
	}
}

func TestWriteTextfileWithoutPathIsNoop(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
