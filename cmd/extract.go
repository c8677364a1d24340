package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prosodylab/prosolia/internal/app"
)

var extractOutput string

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [flags] <audiofile>",
	Short: "Run the full feature extraction pipeline on a recording",
	Long: `Run the complete pipeline on one mono wav or flac file:

- gammatone filterbank energy on an ERB frequency scale, with optional
  log or cubic-root compression
- type-II DCT compression of the frequency axis
- pitch and probability of voicing from the Kaldi pitch extractor

The combined features are written as a single JSON or YAML document, or as
a flat CSV table.

Examples:
  # Extract with the settings from the config file
  prosolia extract recording.wav

  # Override filterbank parameters from the command line
  prosolia extract --nb-channels 32 --compression log recording.wav

  # Write YAML to an explicit output file
  prosolia extract --format yaml -o features.yaml recording.wav

  # Stream JSON to stdout
  prosolia extract -o - recording.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"output file, '-' for stdout (default is the input path with a .json/.yaml extension)")

	// Pipeline parameter overrides, bound straight into the config keys
	extractCmd.Flags().Int("nb-channels", 20,
		"number of frequency channels in the filterbank")
	extractCmd.Flags().Float64("low-frequency", 20,
		"lowest center frequency of the filterbank in Hz")
	extractCmd.Flags().Float64("window-time", 0.5,
		"energy integration window in seconds")
	extractCmd.Flags().Float64("overlap-time", 0.1,
		"advance between successive windows in seconds")
	extractCmd.Flags().String("compression", "none",
		"energy compression mode (none, log, cubic)")
	extractCmd.Flags().Int("dct-size", 8,
		"number of DCT coefficients to keep")
	extractCmd.Flags().String("dct-normalize", "",
		"DCT normalization ('ortho' or empty)")
	extractCmd.Flags().String("kaldi-root", "",
		"Kaldi installation root containing src/featbin")

	bindFlags(extractCmd.Flags(), map[string]string{
		"nb-channels":   "filterbank.nb_channels",
		"low-frequency": "filterbank.low_frequency",
		"window-time":   "filterbank.window_time",
		"overlap-time":  "filterbank.overlap_time",
		"compression":   "filterbank.compression",
		"dct-size":      "dct.size",
		"dct-normalize": "dct.normalize",
		"kaldi-root":    "pitch.kaldi_root",
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	appCtx := &app.Context{
		InputFile:    args[0],
		OutputFile:   extractOutput,
		OutputFormat: viper.GetString("output_format"),
		Verbose:      viper.GetBool("verbose"),
	}

	application, err := app.NewApp(appCtx)
	if err != nil {
		return err
	}

	// Interruption cancels the run; the pitch backend still removes its
	// temporary workspace on this path.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
