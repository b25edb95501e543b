// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// PolisherType selects between contig-polish (dedup overlaps per query)
// and fragment-polish (keep every overlap, tag output with "r").
type PolisherType string

const (
	// TypeContig is mode "C": polish a full assembly, one overlap per query survives.
	TypeContig PolisherType = "C"

	// TypeFragment is mode "F": polish long reads directly, no dedup.
	TypeFragment PolisherType = "F"
)

// Defaults mirror the reference polisher's constructor defaults.
const (
	DefaultWindowLength     = 500
	DefaultQualityThreshold = 10.0
	DefaultErrorThreshold   = 0.3
	DefaultMatch        int8 = 3
	DefaultMismatch     int8 = -5
	DefaultGap          int8 = -4
)

// Error is a configuration-time fatal condition: unsupported file
// extension, invalid polisher type, zero window length, and the like.
// It is always fatal at construction, per spec §7 bucket 1.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

func configErrorf(format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Config is the root-level settings struct, populated from the
// command line (bound to Viper in cmd/polish.go) or directly via New.
type Config struct {
	// TargetsPath is the FASTA/FASTQ (optionally .gz) file of draft sequences to polish.
	TargetsPath string `mapstructure:"targets"`

	// QueriesPath is the FASTA/FASTQ (optionally .gz) file of reads/contigs to polish with.
	QueriesPath string `mapstructure:"queries"`

	// OverlapsPath is the MHAP/PAF/SAM (optionally .gz) file of query-target overlaps.
	OverlapsPath string `mapstructure:"overlaps"`

	// OutPath is where polished sequences are written (FASTA).
	OutPath string `mapstructure:"out"`

	// Type selects contig (C) vs fragment (F) polishing.
	Type PolisherType `mapstructure:"type"`

	// WindowLength is the fixed target-window stride in bp.
	WindowLength uint32 `mapstructure:"window-length"`

	// OverlapPercentage, in [0, 0.5), turns on window-overlap stitching mode.
	OverlapPercentage float64 `mapstructure:"overlap-percentage"`

	// QualityThreshold is the minimum mean Phred quality a fragment needs to become a layer.
	QualityThreshold float64 `mapstructure:"quality-threshold"`

	// ErrorThreshold drops overlaps whose self-reported error exceeds it.
	ErrorThreshold float64 `mapstructure:"error-threshold"`

	// Trim removes backbone-unsupported consensus tails; only applied when OverlapPercentage == 0.
	Trim bool `mapstructure:"trim"`

	// Match, Mismatch, Gap are POA/alignment scoring parameters.
	Match    int8 `mapstructure:"match"`
	Mismatch int8 `mapstructure:"mismatch"`
	Gap      int8 `mapstructure:"gap"`

	// NumThreads sizes the worker pool.
	NumThreads int `mapstructure:"threads"`

	// DropUnpolishedSequences drops targets with zero polished windows.
	DropUnpolishedSequences bool `mapstructure:"drop-unpolished"`

	// CPUProfile is the --cpu-profile directory; when it is non-empty,
	// cmd/polish.go wraps the run in a pkg/profile CPU profile.
	// polisher.Run itself does not read it.
	CPUProfile string `mapstructure:"cpu-profile"`
}

// New returns a Config populated by Viper (flags bound in cmd/polish.go),
// with defaults applied for anything left unset.
func New() Config {
	c := Config{
		Type:             TypeFragment,
		WindowLength:     DefaultWindowLength,
		QualityThreshold: DefaultQualityThreshold,
		ErrorThreshold:   DefaultErrorThreshold,
		Match:            DefaultMatch,
		Mismatch:         DefaultMismatch,
		Gap:              DefaultGap,
		NumThreads:       runtime.NumCPU(),
	}

	if err := viper.Unmarshal(&c); err != nil {
		// Viper decode failures are a programmer error (bad mapstructure tags),
		// not a user-facing configuration error, so this one does panic.
		panic(fmt.Sprintf("unable to decode settings into Config: %v", err))
	}

	if c.NumThreads < 1 {
		c.NumThreads = runtime.NumCPU()
	}

	return c
}

// Validate checks the fatal, construction-time conditions of spec §6/§7.
// It does not check "empty input set" conditions -- those are only knowable
// after parsing and are reported by the seqstore/overlapset packages.
func (c *Config) Validate() error {
	if c.Type != TypeContig && c.Type != TypeFragment {
		return configErrorf("invalid polisher type %q: must be %q or %q", c.Type, TypeContig, TypeFragment)
	}

	if c.WindowLength == 0 {
		return configErrorf("invalid window length: must be greater than 0")
	}

	if c.OverlapPercentage < 0 || c.OverlapPercentage >= 0.5 {
		return configErrorf("invalid overlap percentage %v: must be in [0, 0.5)", c.OverlapPercentage)
	}

	if c.ErrorThreshold < 0 || c.ErrorThreshold > 1 {
		return configErrorf("invalid error threshold %v: must be in [0, 1]", c.ErrorThreshold)
	}

	if c.QualityThreshold < 0 {
		return configErrorf("invalid quality threshold %v: must be >= 0", c.QualityThreshold)
	}

	if c.NumThreads < 1 {
		return configErrorf("invalid thread count %d: must be >= 1", c.NumThreads)
	}

	if err := validateExtension(c.TargetsPath, fastaFastqExtensions); err != nil {
		return err
	}
	if err := validateExtension(c.QueriesPath, fastaFastqExtensions); err != nil {
		return err
	}
	if err := validateExtension(c.OverlapsPath, overlapExtensions); err != nil {
		return err
	}

	return nil
}

var fastaFastqExtensions = []string{
	".fasta", ".fasta.gz", ".fna", ".fna.gz", ".fa", ".fa.gz",
	".fastq", ".fastq.gz", ".fq", ".fq.gz",
}

var overlapExtensions = []string{
	".mhap", ".mhap.gz", ".paf", ".paf.gz", ".sam", ".sam.gz",
}

func validateExtension(path string, allowed []string) error {
	lower := strings.ToLower(path)
	for _, ext := range allowed {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return configErrorf(
		"file %s has unsupported format extension (valid extensions: %s)",
		path, strings.Join(allowed, ", "),
	)
}
