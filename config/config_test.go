// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			TargetsPath:  "targets.fasta",
			QueriesPath:  "queries.fastq.gz",
			OverlapsPath: "overlaps.paf",
			Type:         TypeFragment,
			WindowLength: 500,
			NumThreads:   1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"invalid type", func(c *Config) { c.Type = "X" }, "invalid polisher type"},
		{"zero window length", func(c *Config) { c.WindowLength = 0 }, "invalid window length"},
		{"overlap percentage too high", func(c *Config) { c.OverlapPercentage = 0.5 }, "invalid overlap percentage"},
		{"negative overlap percentage", func(c *Config) { c.OverlapPercentage = -0.1 }, "invalid overlap percentage"},
		{"error threshold too high", func(c *Config) { c.ErrorThreshold = 1.1 }, "invalid error threshold"},
		{"negative quality threshold", func(c *Config) { c.QualityThreshold = -1 }, "invalid quality threshold"},
		{"zero threads", func(c *Config) { c.NumThreads = 0 }, "invalid thread count"},
		{"bad targets extension", func(c *Config) { c.TargetsPath = "targets.txt" }, "unsupported format extension"},
		{"bad overlaps extension", func(c *Config) { c.OverlapsPath = "overlaps.bam" }, "unsupported format extension"},
		{"gzipped fastq is fine", func(c *Config) { c.QueriesPath = "queries.fq.gz" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
