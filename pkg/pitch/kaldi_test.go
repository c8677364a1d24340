package pitch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKaldiStub installs a shell script in place of the real extractor
// under a fresh installation root and returns that root.
func writeKaldiStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "src", "featbin")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	exe := filepath.Join(dir, "compute-kaldi-pitch-feats")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return root
}

func writeSilence(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speech.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a real wav, the stub never reads it"), 0o644))
	return path
}

func TestExecutablePath(t *testing.T) {
	b := NewKaldiBackend("/opt/kaldi", false, nil)
	want := filepath.Join("/opt/kaldi", "src", "featbin", "compute-kaldi-pitch-feats")
	assert.Equal(t, want, b.Executable())
}

func TestExtractMissingExecutable(t *testing.T) {
	b := NewKaldiBackend(t.TempDir(), false, nil)

	_, err := b.Extract(context.Background(), writeSilence(t), 16000)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeMissingExecutable, extErr.Code)
	assert.Contains(t, extErr.Message, "compute-kaldi-pitch-feats")
}

func TestExtractSuccess(t *testing.T) {
	root := writeKaldiStub(t, `
[ "$1" = "--sample-frequency=16000" ] || exit 9
out="${3#ark,t:}"
{
  echo 'speech  ['
  echo '  0.12 110.0'
  echo '  0.50 120.5'
  echo '  -0.30 95.0 ]'
} > "$out"
`)
	b := NewKaldiBackend(root, false, nil)

	trace, err := b.Extract(context.Background(), writeSilence(t), 16000)
	require.NoError(t, err)

	require.Equal(t, 3, trace.Frames())
	assert.Equal(t, []float64{0.12, 0.50, -0.30}, trace.POV)
	assert.Equal(t, []float64{110.0, 120.5, 95.0}, trace.Pitch)
}

func TestExtractManifest(t *testing.T) {
	// the stub runs inside the workspace, so wav.scp is in its cwd
	root := writeKaldiStub(t, `
cp wav.scp "$STUB_OUT"
out="${3#ark,t:}"
echo 'speech  [' > "$out"
`)
	side := filepath.Join(t.TempDir(), "manifest.copy")
	t.Setenv("STUB_OUT", side)

	wavPath := writeSilence(t)
	b := NewKaldiBackend(root, false, nil)

	_, err := b.Extract(context.Background(), wavPath, 16000)
	require.NoError(t, err)

	manifest, err := os.ReadFile(side)
	require.NoError(t, err)

	absWav, err := filepath.Abs(wavPath)
	require.NoError(t, err)
	assert.Equal(t, "speech "+absWav+"\n", string(manifest),
		"manifest must map the extension-free basename to the absolute path")
}

func TestExtractNonzeroExit(t *testing.T) {
	root := writeKaldiStub(t, `
echo "$PWD" > "$STUB_OUT"
exit 3
`)
	side := filepath.Join(t.TempDir(), "cwd.txt")
	t.Setenv("STUB_OUT", side)

	b := NewKaldiBackend(root, false, nil)

	_, err := b.Extract(context.Background(), writeSilence(t), 16000)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeExecution, extErr.Code)
	assert.Contains(t, extErr.Message, "returned with 3")
	assert.Contains(t, extErr.Command, "--sample-frequency=16000")

	// the workspace the stub ran in must be gone
	cwd, err := os.ReadFile(side)
	require.NoError(t, err)
	workspace := string(cwd[:len(cwd)-1])
	_, statErr := os.Stat(workspace)
	assert.True(t, os.IsNotExist(statErr), "workspace %s was not removed", workspace)
}

func TestExtractMalformedOutput(t *testing.T) {
	root := writeKaldiStub(t, `
out="${3#ark,t:}"
{
  echo 'speech  ['
  echo '  0.12 not-a-number'
} > "$out"
`)
	b := NewKaldiBackend(root, false, nil)

	_, err := b.Extract(context.Background(), writeSilence(t), 16000)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeOutputParse, extErr.Code)
	assert.Contains(t, extErr.Message, "bad pitch value")
}

func TestExtractMissingOutput(t *testing.T) {
	// tool exits zero without producing the table
	root := writeKaldiStub(t, `exit 0`)
	b := NewKaldiBackend(root, false, nil)

	_, err := b.Extract(context.Background(), writeSilence(t), 16000)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeOutputParse, extErr.Code)
}

func TestExtractCancellation(t *testing.T) {
	root := writeKaldiStub(t, `
echo "$PWD" > "$STUB_OUT"
sleep 30
`)
	side := filepath.Join(t.TempDir(), "cwd.txt")
	t.Setenv("STUB_OUT", side)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	b := NewKaldiBackend(root, false, nil)
	_, err := b.Extract(ctx, writeSilence(t), 16000)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeExecution, extErr.Code)

	cwd, err := os.ReadFile(side)
	require.NoError(t, err)
	workspace := string(cwd[:len(cwd)-1])
	_, statErr := os.Stat(workspace)
	assert.True(t, os.IsNotExist(statErr), "workspace %s leaked after cancellation", workspace)
}

func TestParsePitchTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.txt")
	table := "speech  [\n" +
		"  0.8123 199.2\n" +
		"  0.0051 87.4\n" +
		"  -0.42 0.0 ]\n"
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	trace, err := parsePitchTable(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.8123, 0.0051, -0.42}, trace.POV)
	assert.Equal(t, []float64{199.2, 87.4, 0.0}, trace.Pitch)
	assert.Len(t, trace.POV, len(trace.Pitch), "traces must stay aligned")
}

func TestParsePitchTableSingleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.txt")
	require.NoError(t, os.WriteFile(path, []byte("speech  [\n0.5\n"), 0o644))

	_, err := parsePitchTable(path)
	require.Error(t, err)

	var extErr *ExtractorError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrCodeOutputParse, extErr.Code)
	assert.Contains(t, extErr.Message, "want 2")
}

func TestExtractorErrorUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := NewExtractorError(ErrCodeWorkspace, "", "workspace gone", cause)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, "workspace gone: "+cause.Error(), err.Error())
}

func TestVoicedRatio(t *testing.T) {
	trace := &Trace{
		POV:   []float64{0.9, -0.2, 0.4, -0.8},
		Pitch: []float64{200, 0, 150, 0},
	}
	assert.InDelta(t, 0.5, trace.VoicedRatio(0), 1e-12)
	assert.InDelta(t, 0.25, trace.VoicedRatio(0.5), 1e-12)

	empty := &Trace{}
	assert.Zero(t, empty.VoicedRatio(0))
	assert.Zero(t, empty.Frames())
}
