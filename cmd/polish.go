package cmd

import (
	"log"
	"os"

	"github.com/jjtimmons/conseq/config"
	"github.com/jjtimmons/conseq/internal/polisher"
	"github.com/jjtimmons/conseq/internal/record"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	targetsPath  string
	queriesPath  string
	overlapsPath string
	outPath      string
	polishType   string
	cpuProfile   string
)

// polishCmd represents the polish command
var polishCmd = &cobra.Command{
	Use:   "polish",
	Short: "Polish draft sequences against a set of overlapping reads or contigs",
	Long: `polish consumes a set of draft target sequences, a set of reads or
contigs that overlap them, and the overlaps between the two, and
produces a consensus-polished sequence for each target by folding
every overlapping read into a partial-order-alignment graph, one fixed
window at a time.`,
	Run: func(cmd *cobra.Command, args []string) {
		if cpuProfile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile)).Stop()
		}

		cfg := config.New()
		if err := cfg.Validate(); err != nil {
			log.Fatalf("%v", err)
		}

		logger := log.New(os.Stderr, "", 0)
		outputs, err := polisher.Run(cfg, logger)
		if err != nil {
			log.Fatalf("%v", err)
		}

		records := make([]record.FastaRecord, len(outputs))
		for i, o := range outputs {
			records[i] = record.FastaRecord{Name: o.Name, Data: o.Data}
		}
		if err := record.WriteFasta(cfg.OutPath, records); err != nil {
			log.Fatalf("failed to write %s: %v", cfg.OutPath, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(polishCmd)

	polishCmd.Flags().StringVarP(&targetsPath, "targets", "t", "", "FASTA/FASTQ file of draft sequences to polish")
	polishCmd.Flags().StringVarP(&queriesPath, "queries", "q", "", "FASTA/FASTQ file of reads or contigs to polish with")
	polishCmd.Flags().StringVarP(&overlapsPath, "overlaps", "o", "", "MHAP/PAF/SAM file of query-target overlaps")
	polishCmd.Flags().StringVarP(&outPath, "out", "d", "polished.fasta", "path to write polished sequences")
	polishCmd.Flags().StringVar(&polishType, "type", "F", `polisher type: "C" (contig) or "F" (fragment)`)
	polishCmd.Flags().Uint32("window-length", config.DefaultWindowLength, "target window length in bp")
	polishCmd.Flags().Float64("overlap-percentage", 0, "window overlap fraction in [0, 0.5), enables stitching mode")
	polishCmd.Flags().Float64("quality-threshold", config.DefaultQualityThreshold, "minimum mean Phred quality for a fragment to become a layer")
	polishCmd.Flags().Float64("error-threshold", config.DefaultErrorThreshold, "drop overlaps whose self-reported error exceeds this")
	polishCmd.Flags().Bool("trim", false, "trim backbone-unsupported consensus tails (default mode only)")
	polishCmd.Flags().Int8("match", config.DefaultMatch, "alignment match score")
	polishCmd.Flags().Int8("mismatch", config.DefaultMismatch, "alignment mismatch penalty")
	polishCmd.Flags().Int8("gap", config.DefaultGap, "alignment gap penalty")
	polishCmd.Flags().Int("threads", 0, "worker pool size (default: number of CPUs)")
	polishCmd.Flags().Bool("drop-unpolished", false, "drop targets with zero polished windows")
	polishCmd.Flags().StringVar(&cpuProfile, "cpu-profile", "", "write a CPU profile to this directory")

	polishCmd.MarkFlagRequired("targets")
	polishCmd.MarkFlagRequired("queries")
	polishCmd.MarkFlagRequired("overlaps")

	viper.BindPFlag("targets", polishCmd.Flags().Lookup("targets"))
	viper.BindPFlag("queries", polishCmd.Flags().Lookup("queries"))
	viper.BindPFlag("overlaps", polishCmd.Flags().Lookup("overlaps"))
	viper.BindPFlag("out", polishCmd.Flags().Lookup("out"))
	viper.BindPFlag("type", polishCmd.Flags().Lookup("type"))
	viper.BindPFlag("window-length", polishCmd.Flags().Lookup("window-length"))
	viper.BindPFlag("overlap-percentage", polishCmd.Flags().Lookup("overlap-percentage"))
	viper.BindPFlag("quality-threshold", polishCmd.Flags().Lookup("quality-threshold"))
	viper.BindPFlag("error-threshold", polishCmd.Flags().Lookup("error-threshold"))
	viper.BindPFlag("trim", polishCmd.Flags().Lookup("trim"))
	viper.BindPFlag("match", polishCmd.Flags().Lookup("match"))
	viper.BindPFlag("mismatch", polishCmd.Flags().Lookup("mismatch"))
	viper.BindPFlag("gap", polishCmd.Flags().Lookup("gap"))
	viper.BindPFlag("threads", polishCmd.Flags().Lookup("threads"))
	viper.BindPFlag("drop-unpolished", polishCmd.Flags().Lookup("drop-unpolished"))
	viper.BindPFlag("cpu-profile", polishCmd.Flags().Lookup("cpu-profile"))
}
