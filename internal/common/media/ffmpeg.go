// internal/common/media/ffmpeg.go

// Package media wraps the external ffmpeg binary for demuxing interview
// video into the mono 16 kHz WAV track the analysis engine consumes.
// Every temp file it creates is scoped: removed on success, extraction
// failure, and timeout alike.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"intentrisk-workers/internal/common/logger"

	"github.com/google/uuid"
)

// Demuxer shells out to ffmpeg.
type Demuxer struct {
	ffmpegPath string
	tempDir    string
	timeout    time.Duration
	logger     logger.Logger
}

func NewDemuxer(ffmpegPath, tempDir string, timeout time.Duration, log logger.Logger) *Demuxer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Demuxer{ffmpegPath: ffmpegPath, tempDir: tempDir, timeout: timeout, logger: log}
}

// ExtractAudio writes the video payload to a scoped temp file, demuxes
// its audio track to mono 16 kHz PCM WAV, and returns the WAV bytes.
// Both temp files are removed before returning, on every path.
func (d *Demuxer) ExtractAudio(ctx context.Context, video []byte) ([]byte, error) {
	if len(video) == 0 {
		return nil, fmt.Errorf("empty video payload")
	}

	id := uuid.NewString()
	videoPath := filepath.Join(d.tempDir, "interview-"+id+".video")
	wavPath := filepath.Join(d.tempDir, "interview-"+id+".wav")
	defer d.cleanup(videoPath, wavPath)

	if err := os.WriteFile(videoPath, video, 0o600); err != nil {
		return nil, fmt.Errorf("write temp video: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		wavPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg demux failed: %w: %s", err, truncate(out, 512))
	}

	wav, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read demuxed audio: %w", err)
	}
	return wav, nil
}

// cleanup removes temp files; failures are logged, never escalated.
func (d *Demuxer) cleanup(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			d.logger.Warn("failed to remove temp media file", map[string]interface{}{
				"path":  p,
				"error": err.Error(),
			})
		}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
