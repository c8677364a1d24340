// Package audio loads mono waveforms from wav and flac files.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"

	"github.com/prosodylab/prosolia/pkg/logging"
)

// ErrNotMono is returned when an input file carries more than one channel.
// The pipeline never downmixes silently.
var ErrNotMono = errors.New("input audio is not mono")

// Audio holds a decoded mono waveform. Immutable after load.
type Audio struct {
	Samples    []float64
	SampleRate int
	Path       string
}

// Duration returns the waveform length in seconds.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(a.Samples)) / float64(a.SampleRate) * float64(time.Second))
}

// Load reads a mono waveform and its sample rate from a wav or flac file.
// Samples are float64 in [-1, 1). Multi-channel input fails with ErrNotMono.
func Load(path string) (*Audio, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_loader",
		"path":      path,
	})

	var (
		samples    []float64
		sampleRate int
		channels   int
		err        error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		samples, sampleRate, channels, err = loadFLAC(path)
	default:
		// wav is the primary input format
		samples, sampleRate, channels, err = loadWAV(path)
	}
	if err != nil {
		return nil, err
	}

	if channels != 1 {
		return nil, fmt.Errorf("%s has %d channels: %w", path, channels, ErrNotMono)
	}

	a := &Audio{
		Samples:    samples,
		SampleRate: sampleRate,
		Path:       path,
	}

	logger.Debug("Audio file loaded", logging.Fields{
		"sample_rate": a.SampleRate,
		"samples":     len(a.Samples),
		"duration":    a.Duration().Seconds(),
	})

	return a, nil
}

// loadWAV decodes a wav file with beep. beep streams every file as stereo
// pairs, so the first slot of each pair is kept; the original channel count
// comes from the decoded format.
func loadWAV(path string) ([]float64, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	stream, format, err := wav.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode wav file %s: %w", path, err)
	}
	defer stream.Close()

	out := make([]float64, 0, stream.Len())
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, buf[i][0])
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read wav samples from %s: %w", path, err)
	}

	return out, int(format.SampleRate), format.NumChannels, nil
}

// loadFLAC decodes a flac file with mewkiz/flac, rescaling integer samples
// to [-1, 1) by the stream bit depth.
func loadFLAC(path string) ([]float64, int, int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode flac file %s: %w", path, err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	sampleRate := int(stream.Info.SampleRate)
	scale := float64(int64(1) << (stream.Info.BitsPerSample - 1))

	var out []float64
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read flac frame from %s: %w", path, err)
		}
		if len(frame.Subframes) == 0 {
			continue
		}
		for _, sample := range frame.Subframes[0].Samples {
			out = append(out, float64(sample)/scale)
		}
	}

	return out, sampleRate, channels, nil
}
