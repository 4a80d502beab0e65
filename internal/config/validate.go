package config

import (
	"errors"
	"fmt"

	"github.com/Paintersrp/oneinstance/internal/logging"
	"github.com/Paintersrp/oneinstance/internal/runtime/process"
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseStyle(c.Log.Style); err != nil {
		errs = append(errs, fmt.Errorf("log.style: %w", err))
	}
	if _, err := process.ParseSignal(c.Preempt.Signal); err != nil {
		errs = append(errs, fmt.Errorf("preempt.signal: %w", err))
	}
	return errors.Join(errs...)
}
