// internal/audio/pitch.go
package audio

import "math"

// yinThreshold is the standard absolute threshold on the cumulative mean
// normalized difference. Frames whose minimum stays above it are unvoiced.
const yinThreshold = 0.15

// pitchContour estimates a per-frame fundamental frequency with YIN,
// keeping only voiced frames in the 50–400 Hz band. An empty return means
// no voiced speech was found; callers must treat that as pitch 0, not an
// error.
func pitchContour(frames [][]float64, sampleRate int) []float64 {
	tauMin := int(float64(sampleRate) / PitchMaxHz)
	tauMax := int(float64(sampleRate) / PitchMinHz)
	if tauMin < 2 {
		tauMin = 2
	}

	var contour []float64
	for _, frame := range frames {
		if tauMax >= len(frame)/2 {
			continue
		}
		if f0 := yinPitch(frame, sampleRate, tauMin, tauMax); f0 > 0 {
			contour = append(contour, f0)
		}
	}
	return contour
}

// yinPitch runs the difference function, cumulative mean normalization,
// absolute thresholding, and parabolic interpolation on one frame.
// Returns 0 for unvoiced frames.
func yinPitch(frame []float64, sampleRate, tauMin, tauMax int) float64 {
	w := len(frame) / 2

	diff := make([]float64, tauMax+1)
	for tau := 1; tau <= tauMax; tau++ {
		var sum float64
		for j := 0; j < w; j++ {
			d := frame[j] - frame[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function.
	cmndf := make([]float64, tauMax+1)
	cmndf[0] = 1
	var runningSum float64
	for tau := 1; tau <= tauMax; tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmndf[tau] = 1
		} else {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		}
	}

	// First dip under the threshold, refined to its local minimum.
	tau := -1
	for t := tauMin; t <= tauMax; t++ {
		if cmndf[t] < yinThreshold {
			for t+1 <= tauMax && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0
	}

	refined := parabolicInterp(cmndf, tau)
	f0 := float64(sampleRate) / refined
	if f0 < PitchMinHz || f0 > PitchMaxHz {
		return 0
	}
	return f0
}

// parabolicInterp refines an integer lag by fitting a parabola through the
// minimum and its neighbors.
func parabolicInterp(d []float64, tau int) float64 {
	if tau <= 0 || tau >= len(d)-1 {
		return float64(tau)
	}
	s0, s1, s2 := d[tau-1], d[tau], d[tau+1]
	denom := 2 * (2*s1 - s0 - s2)
	if math.Abs(denom) < 1e-12 {
		return float64(tau)
	}
	return float64(tau) + (s2-s0)/denom
}
