// internal/audio/features.go

// Package audio measures paralinguistic properties of a mono waveform:
// energy, pitch, spectral, and rhythm statistics over fixed-size frames.
package audio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

const (
	// TargetSampleRate is the rate all analysis runs at. Inputs at other
	// rates are resampled first.
	TargetSampleRate = 16000

	// FrameSize and HopSize define the sliding analysis window.
	FrameSize = 2048
	HopSize   = 512

	// Voiced pitch is only searched in the speech band.
	PitchMinHz = 50.0
	PitchMaxHz = 400.0

	// Frames quieter than this fraction of mean RMS count as pauses.
	pauseRMSFraction = 0.10
)

// Features holds the acoustic measurements for one recording. The first
// eight fields feed the classifier vector; PauseRatio and VoicedFrames are
// prosodic support signals for the rule engine only.
type Features struct {
	DurationSeconds      float64
	RMSMean              float64
	RMSStd               float64
	PitchMean            float64
	PitchStd             float64
	ZeroCrossingRateMean float64
	SpectralCentroidMean float64
	TempoProxy           float64

	PauseRatio   float64
	VoicedFrames int
}

// Extract computes acoustic features from mono samples. The only error is
// an empty input; individual statistics that fail are zeroed in place so a
// glitch in one measurement never discards the rest.
func Extract(samples []float64, sampleRate int) (Features, error) {
	if len(samples) == 0 {
		return Features{}, fmt.Errorf("empty audio: no samples to analyze")
	}
	if sampleRate <= 0 {
		sampleRate = TargetSampleRate
	}
	if sampleRate != TargetSampleRate {
		samples = Resample(samples, sampleRate, TargetSampleRate)
		sampleRate = TargetSampleRate
	}

	f := Features{
		DurationSeconds: float64(len(samples)) / float64(sampleRate),
	}

	frames := frameSignal(samples)

	rms := make([]float64, len(frames))
	zcr := make([]float64, len(frames))
	for i, frame := range frames {
		rms[i] = frameRMS(frame)
		zcr[i] = frameZCR(frame)
	}
	f.RMSMean = stat.Mean(rms, nil)
	f.RMSStd = popStd(rms)
	f.ZeroCrossingRateMean = stat.Mean(zcr, nil)
	f.PauseRatio = pauseRatio(rms, f.RMSMean)

	withRecovery(func() {
		contour := pitchContour(frames, sampleRate)
		f.VoicedFrames = len(contour)
		if len(contour) > 0 {
			f.PitchMean = stat.Mean(contour, nil)
			f.PitchStd = popStd(contour)
		}
	})

	var spectra [][]float64
	withRecovery(func() {
		spectra = magnitudeSpectra(frames)
		f.SpectralCentroidMean = centroidMean(spectra, sampleRate)
	})

	withRecovery(func() {
		if spectra != nil {
			f.TempoProxy = tempoFromSpectra(spectra, sampleRate)
		}
	})

	return f, nil
}

// Values returns the eight vector fields in canonical order.
func (f Features) Values() [8]float64 {
	return [8]float64{
		f.DurationSeconds,
		f.RMSMean,
		f.RMSStd,
		f.PitchMean,
		f.PitchStd,
		f.ZeroCrossingRateMean,
		f.SpectralCentroidMean,
		f.TempoProxy,
	}
}

// withRecovery isolates one sub-feature: a panic zeroes that statistic
// instead of aborting the extraction.
func withRecovery(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// frameSignal splits samples into overlapping frames. A signal shorter
// than one frame is zero-padded into a single frame.
func frameSignal(samples []float64) [][]float64 {
	if len(samples) < FrameSize {
		frame := make([]float64, FrameSize)
		copy(frame, samples)
		return [][]float64{frame}
	}

	n := 1 + (len(samples)-FrameSize)/HopSize
	frames := make([][]float64, n)
	for i := 0; i < n; i++ {
		start := i * HopSize
		frames[i] = samples[start : start+FrameSize]
	}
	return frames
}

func frameRMS(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func frameZCR(frame []float64) float64 {
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

func pauseRatio(rms []float64, mean float64) float64 {
	if len(rms) == 0 || mean <= 0 {
		return 0
	}
	threshold := mean * pauseRMSFraction
	var quiet int
	for _, r := range rms {
		if r < threshold {
			quiet++
		}
	}
	return float64(quiet) / float64(len(rms))
}

// magnitudeSpectra computes the Hann-windowed FFT magnitude of each frame.
func magnitudeSpectra(frames [][]float64) [][]float64 {
	fft := fourier.NewFFT(FrameSize)
	window := hannWindow(FrameSize)
	windowed := make([]float64, FrameSize)

	spectra := make([][]float64, len(frames))
	for i, frame := range frames {
		for j := range frame {
			windowed[j] = frame[j] * window[j]
		}
		coeffs := fft.Coefficients(nil, windowed)
		mags := make([]float64, len(coeffs))
		for k, c := range coeffs {
			mags[k] = cmplxAbs(c)
		}
		spectra[i] = mags
	}
	return spectra
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// centroidMean averages the spectral centroid over frames with energy.
func centroidMean(spectra [][]float64, sampleRate int) float64 {
	binHz := float64(sampleRate) / float64(FrameSize)

	var total float64
	var counted int
	for _, mags := range spectra {
		var weighted, sum float64
		for k, m := range mags {
			weighted += float64(k) * binHz * m
			sum += m
		}
		if sum > 1e-12 {
			total += weighted / sum
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

func popStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(xs, nil))
}
