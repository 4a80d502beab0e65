package config

// Config is the supervisor's settings document.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Preempt PreemptConfig `yaml:"preempt"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig controls the diagnostics sink.
type LogConfig struct {
	Level     string `yaml:"level"`
	Style     string `yaml:"style"`
	Timestamp *bool  `yaml:"timestamp"`
}

// PreemptConfig controls how a running child is asked to stop.
type PreemptConfig struct {
	// Signal is delivered to the child's process group. Ignored on Windows,
	// where a CTRL_BREAK_EVENT is always used.
	Signal string `yaml:"signal"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	timestamp := true
	return &Config{
		Log: LogConfig{
			Level:     "info",
			Style:     "always",
			Timestamp: &timestamp,
		},
		Preempt: PreemptConfig{
			Signal: "INT",
		},
	}
}

// TimestampEnabled reports whether log lines carry a timestamp.
func (l LogConfig) TimestampEnabled() bool {
	return l.Timestamp == nil || *l.Timestamp
}
