// internal/common/media/ffmpeg_test.go
package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDemuxer_Defaults(t *testing.T) {
	d := NewDemuxer("", "", 0, nil)

	assert.Equal(t, "ffmpeg", d.ffmpegPath)
	assert.Equal(t, os.TempDir(), d.tempDir)
	assert.Equal(t, 2*time.Minute, d.timeout)
}

func TestExtractAudio_EmptyPayload(t *testing.T) {
	d := NewDemuxer("", t.TempDir(), time.Second, nil)

	_, err := d.ExtractAudio(context.Background(), nil)
	assert.Error(t, err)
}

func TestExtractAudio_FailureRemovesTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	// A binary that cannot exist, so the demux always fails.
	d := NewDemuxer(filepath.Join(tempDir, "no-such-ffmpeg"), tempDir, time.Second, nil)

	_, err := d.ExtractAudio(context.Background(), []byte("pretend video bytes"))
	require.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
