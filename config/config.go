// Package config loads an ld2410.Options device profile from a YAML
// file, e.g. for per-deployment baud rate, timeout, and queue-size
// tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hi-link/ld2410"
)

// File is the on-disk representation of an ld2410.Options profile.
// CommandTimeoutSeconds is a float so fractional-second timeouts can be
// expressed in YAML.
type File struct {
	Baudrate               int     `yaml:"baudrate"`
	CommandTimeoutSeconds  float64 `yaml:"command_timeout"`
	ReportQueueSize        int     `yaml:"report_queue_size"`
}

// Load reads path as YAML and returns the resulting ld2410.Options, with
// zero fields replaced by ld2410.DefaultOptions().
func Load(path string) (ld2410.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ld2410.Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ld2410.Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	opts := ld2410.Options{
		Baudrate:        f.Baudrate,
		ReportQueueSize: f.ReportQueueSize,
	}
	if f.CommandTimeoutSeconds > 0 {
		opts.CommandTimeout = time.Duration(f.CommandTimeoutSeconds * float64(time.Second))
	}
	d := ld2410.DefaultOptions()
	if opts.Baudrate == 0 {
		opts.Baudrate = d.Baudrate
	}
	if opts.CommandTimeout == 0 {
		opts.CommandTimeout = d.CommandTimeout
	}
	if opts.ReportQueueSize == 0 {
		opts.ReportQueueSize = d.ReportQueueSize
	}
	return opts, nil
}
