// Package pipeline sequences the feature extraction over one input file.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prosodylab/prosolia/pkg/audio"
	"github.com/prosodylab/prosolia/pkg/dct"
	"github.com/prosodylab/prosolia/pkg/gammatone"
	"github.com/prosodylab/prosolia/pkg/logging"
	"github.com/prosodylab/prosolia/pkg/pitch"
)

// Config holds the fully resolved parameters of one pipeline run.
type Config struct {
	Filterbank gammatone.Spec
	DCT        dct.Spec
}

// Orchestrator runs the two feature branches over one input file and
// assembles the combined result.
type Orchestrator struct {
	config  *Config
	backend pitch.Backend
	logger  logging.Logger
}

// NewOrchestrator creates a pipeline orchestrator. Parameter combinations
// that cannot succeed are rejected here, before any work starts.
func NewOrchestrator(config *Config, backend pitch.Backend, logger logging.Logger) (*Orchestrator, error) {
	if config == nil {
		return nil, fmt.Errorf("pipeline config is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("pitch backend is required")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	if config.DCT.Size > config.Filterbank.NumChannels {
		return nil, fmt.Errorf("dct size %d exceeds filterbank channel count %d",
			config.DCT.Size, config.Filterbank.NumChannels)
	}

	return &Orchestrator{
		config:  config,
		backend: backend,
		logger:  logger,
	}, nil
}

// Run loads the waveform, computes the spectral branch (filterbank energy
// then DCT) and the pitch branch, and joins them into a FeatureBundle.
//
// The two branches have no data dependency, so they run concurrently; the
// pitch subprocess dominates latency anyway. Any failure aborts the run and
// all partial results are discarded.
func (o *Orchestrator) Run(ctx context.Context, path string) (*FeatureBundle, error) {
	startTime := time.Now()

	wave, err := audio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}

	if err := o.config.Filterbank.Validate(wave.SampleRate); err != nil {
		return nil, err
	}

	o.logger.Debug("Starting feature extraction", logging.Fields{
		"source":      path,
		"sample_rate": wave.SampleRate,
		"duration":    wave.Duration().Seconds(),
	})

	var (
		wg sync.WaitGroup

		energy      *gammatone.EnergyResult
		coeffs      [][]float64
		spectralErr error

		trace    *pitch.Trace
		pitchErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		energy, spectralErr = gammatone.Energy(wave.Samples, wave.SampleRate, o.config.Filterbank)
		if spectralErr != nil {
			return
		}
		coeffs, spectralErr = dct.Compress(energy.Energy, o.config.DCT)
	}()

	go func() {
		defer wg.Done()
		trace, pitchErr = o.backend.Extract(ctx, path, wave.SampleRate)
	}()

	wg.Wait()

	if spectralErr != nil {
		return nil, fmt.Errorf("spectral branch failed: %w", spectralErr)
	}
	if pitchErr != nil {
		return nil, fmt.Errorf("pitch branch failed: %w", pitchErr)
	}

	// The branches are computed independently, so the shared time axis is
	// verified rather than assumed.
	if len(coeffs) > 0 && len(coeffs[0]) != energy.Frames() {
		return nil, fmt.Errorf("time axis mismatch: energy has %d frames, dct has %d columns",
			energy.Frames(), len(coeffs[0]))
	}

	bundle := &FeatureBundle{
		Source:            path,
		SampleRate:        wave.SampleRate,
		CenterFrequencies: energy.CenterFrequencies,
		Energy:            energy.Energy,
		DCT:               coeffs,
		POV:               trace.POV,
		Pitch:             trace.Pitch,
	}

	o.logger.Debug("Feature extraction completed", logging.Fields{
		"energy_frames": bundle.EnergyFrames(),
		"pitch_frames":  bundle.PitchFrames(),
		"channels":      len(bundle.CenterFrequencies),
		"total_time":    time.Since(startTime).Seconds(),
	})

	return bundle, nil
}
