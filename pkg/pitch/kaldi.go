package pitch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/prosodylab/prosolia/pkg/logging"
)

// kaldiPitchExecutable is the extractor location relative to the Kaldi
// installation root.
var kaldiPitchExecutable = filepath.Join("src", "featbin", "compute-kaldi-pitch-feats")

// manifest and output file names inside the temporary workspace
const (
	manifestName = "wav.scp"
	outputName   = "pitch.txt"
)

// KaldiBackend runs compute-kaldi-pitch-feats from a Kaldi tree.
//
// Every call acquires its own uniquely named temporary workspace, writes a
// one-line scp manifest mapping the recording identifier to the input file,
// runs the tool with the workspace as working directory and parses its
// textual ark output. The workspace is removed on every exit path,
// cancellation included.
type KaldiBackend struct {
	// Root is the Kaldi installation root containing src/featbin.
	Root string

	// Verbose forwards the tool's stderr diagnostics instead of
	// discarding them.
	Verbose bool

	logger logging.Logger
}

var _ Backend = (*KaldiBackend)(nil)

// NewKaldiBackend creates a Kaldi pitch backend. A nil logger falls back to
// the global one.
func NewKaldiBackend(root string, verbose bool, logger logging.Logger) *KaldiBackend {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &KaldiBackend{
		Root:    root,
		Verbose: verbose,
		logger:  logger,
	}
}

// Executable returns the full path of the extractor under the installation
// root.
func (b *KaldiBackend) Executable() string {
	return filepath.Join(b.Root, kaldiPitchExecutable)
}

// Extract implements Backend.
func (b *KaldiBackend) Extract(ctx context.Context, wavPath string, sampleRate int) (*Trace, error) {
	logger := b.logger.WithFields(logging.Fields{
		"component":   "kaldi_pitch",
		"wav":         wavPath,
		"sample_rate": sampleRate,
	})

	// Pre-flight: the executable must exist before anything is spawned
	// or any workspace created.
	exe := b.Executable()
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return nil, NewExtractorError(ErrCodeMissingExecutable, "",
			fmt.Sprintf("%s not found", exe), err)
	}

	tempDir, err := os.MkdirTemp("", "prosolia-pitch-")
	if err != nil {
		return nil, NewExtractorError(ErrCodeWorkspace, "",
			"failed to create temporary workspace", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("Failed to remove temporary workspace", logging.Fields{
				"temp_dir": tempDir,
			})
		}
	}()

	absWav, err := filepath.Abs(wavPath)
	if err != nil {
		return nil, NewExtractorError(ErrCodeWorkspace, "",
			fmt.Sprintf("failed to resolve %s", wavPath), err)
	}

	// Register the input with the tool: one manifest line mapping the
	// recording identifier (basename, no extension) to the absolute path.
	recordingID := strings.TrimSuffix(filepath.Base(absWav), filepath.Ext(absWav))
	scpPath := filepath.Join(tempDir, manifestName)
	manifest := fmt.Sprintf("%s %s\n", recordingID, absWav)
	if err := os.WriteFile(scpPath, []byte(manifest), 0o644); err != nil {
		return nil, NewExtractorError(ErrCodeWorkspace, "",
			"failed to write scp manifest", err)
	}

	outPath := filepath.Join(tempDir, outputName)
	args := []string{
		fmt.Sprintf("--sample-frequency=%d", sampleRate),
		"scp:" + scpPath,
		"ark,t:" + outPath,
	}
	commandLine := exe + " " + strings.Join(args, " ")

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = tempDir
	if b.Verbose {
		// Kaldi logs everything to stderr, pass it through
		cmd.Stderr = os.Stderr
	}

	logger.Debug("Running pitch extractor", logging.Fields{
		"command":  commandLine,
		"temp_dir": tempDir,
	})

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, NewExtractorError(ErrCodeExecution, commandLine,
				fmt.Sprintf("command %q returned with %d", commandLine, exitErr.ExitCode()), err)
		}
		return nil, NewExtractorError(ErrCodeExecution, commandLine,
			fmt.Sprintf("command %q failed to run", commandLine), err)
	}

	trace, err := parsePitchTable(outPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("Pitch extraction completed", logging.Fields{
		"frames": trace.Frames(),
	})

	return trace, nil
}
