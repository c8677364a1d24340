package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"

	"github.com/prosodylab/prosolia/configs"
	"github.com/prosodylab/prosolia/pkg/audio"
	"github.com/prosodylab/prosolia/pkg/pitch"
)

var ptKaldiRoot string

// ptCmd runs the pitch branch alone
var ptCmd = &cobra.Command{
	Use:   "pitch-test <audiofile>",
	Short: "Run only the external pitch extractor on a recording",
	Long: `Run the Kaldi pitch extractor on one file and print a summary of
the resulting pitch and voicing traces. The spectral branch is skipped.

Examples:
  prosolia pitch-test recording.wav
  prosolia pitch-test --kaldi-root /opt/kaldi recording.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runPitchTest,
}

func init() {
	rootCmd.AddCommand(ptCmd)

	ptCmd.Flags().StringVar(&ptKaldiRoot, "kaldi-root", "",
		"Kaldi installation root (overrides config)")
}

func runPitchTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Pitch Extraction Test\n")
	fmt.Printf("=====================\n\n")

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("%sfailed to load config: %v%s", ColorRed, err, ColorReset)
	}
	if ptKaldiRoot != "" {
		config.Pitch.KaldiRoot = ptKaldiRoot
	}
	if config.Pitch.KaldiRoot == "" {
		return fmt.Errorf("%spitch.kaldi_root is required%s", ColorRed, ColorReset)
	}

	timer := NewPerformanceTimer()
	timer.StartEvent("decode")

	wave, err := audio.Load(args[0])
	if err != nil {
		return fmt.Errorf("%sfailed to load audio: %v%s", ColorRed, err, ColorReset)
	}

	timer.StartEvent("pitch_extraction")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := pitch.NewKaldiBackend(config.Pitch.KaldiRoot, viper.GetBool("verbose"), nil)
	trace, err := backend.Extract(ctx, args[0], wave.SampleRate)
	if err != nil {
		return fmt.Errorf("%spitch extraction failed: %v%s", ColorRed, err, ColorReset)
	}

	fmt.Printf("%sPitch extraction succeeded%s\n\n", ColorGreen, ColorReset)
	fmt.Printf("Frames:        %d\n", trace.Frames())
	fmt.Printf("Voiced ratio:  %.3f (POV > 0)\n", trace.VoicedRatio(0))
	if trace.Frames() > 0 {
		fmt.Printf("Mean pitch:    %.1f Hz\n", stat.Mean(trace.Pitch, nil))
		fmt.Printf("Mean POV:      %.3f\n", stat.Mean(trace.POV, nil))
	}

	timer.PrintSummary()
	return nil
}
