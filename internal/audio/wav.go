// internal/audio/wav.go
package audio

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-audio/wav"
)

// DecodeWAV parses a WAV container and returns mono float64 samples in
// [-1, 1] plus the source sample rate. Multi-channel input is downmixed by
// averaging channels.
func DecodeWAV(raw []byte) ([]float64, int, error) {
	if len(raw) == 0 {
		return nil, 0, fmt.Errorf("empty wav payload")
	}

	dec := wav.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode pcm: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("wav contains no samples")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	rate := buf.Format.SampleRate
	if rate <= 0 {
		return nil, 0, fmt.Errorf("wav reports invalid sample rate %d", rate)
	}

	// Full-scale value for the source bit depth.
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := math.Pow(2, float64(bitDepth-1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return samples, rate, nil
}

// Resample converts samples to the target rate by linear interpolation.
// Good enough for feature measurement; we are not reproducing audio.
func Resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
