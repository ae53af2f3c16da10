package ffprobe_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"warble/internal/media/ffprobe"
	"warble/internal/testsupport"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "vorbis", "codec_type": "audio", "sample_rate": "48000", "channels": 1},
    {"index": 1, "codec_name": "mjpeg", "codec_type": "video"}
  ],
  "format": {
    "filename": "voice.ogg",
    "nb_streams": 2,
    "duration": "12.48",
    "size": "20480",
    "format_name": "ogg"
  }
}`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voice.ogg")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestInspectParsesProbeOutput(t *testing.T) {
	testsupport.StubBinary(t, "ffprobe", "#!/bin/sh\ncat <<'EOF'\n"+probeJSON+"\nEOF\n")

	result, err := ffprobe.Inspect(context.Background(), "ffprobe", writeInput(t))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}

	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected one audio stream, got %d", result.AudioStreamCount())
	}
	if result.FirstAudioCodec() != "vorbis" {
		t.Fatalf("unexpected codec %q", result.FirstAudioCodec())
	}
	if result.DurationSeconds() != 12.48 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 20480 {
		t.Fatalf("unexpected size %d", result.SizeBytes())
	}
}

func TestInspectSurfacesProbeFailure(t *testing.T) {
	testsupport.StubBinary(t, "ffprobe", "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")

	_, err := ffprobe.Inspect(context.Background(), "ffprobe", writeInput(t))
	if err == nil {
		t.Fatal("expected error for failed probe")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("stderr not surfaced: %v", err)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := ffprobe.Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
