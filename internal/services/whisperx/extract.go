package whisperx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// convertArgs builds the ffmpeg arguments that turn any audio container into
// a mono 16kHz PCM WAV file suitable for WhisperX.
func convertArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// ConvertToWAV normalizes source into dest.
func ConvertToWAV(ctx context.Context, ffmpegBinary, source, dest string) error {
	cmd := exec.CommandContext(ctx, ffmpegBinary, convertArgs(source, dest)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg convert: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
