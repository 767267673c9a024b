// internal/audio/tempo.go
package audio

// Tempo search band, in BPM-like units of onset periodicity.
const (
	tempoMinBPM = 30.0
	tempoMaxBPM = 300.0
)

// tempoFromSpectra derives a speaking-pace proxy: build an onset-strength
// envelope from spectral flux, autocorrelate it, and convert the strongest
// periodicity into a BPM-like value. Returns 0 when the recording is too
// short to show any periodicity.
func tempoFromSpectra(spectra [][]float64, sampleRate int) float64 {
	envelope := onsetEnvelope(spectra)
	if len(envelope) < 8 {
		return 0
	}

	frameRate := float64(sampleRate) / float64(HopSize)

	lagMin := int(frameRate * 60.0 / tempoMaxBPM)
	lagMax := int(frameRate * 60.0 / tempoMinBPM)
	if lagMin < 1 {
		lagMin = 1
	}
	if lagMax >= len(envelope) {
		lagMax = len(envelope) - 1
	}
	if lagMax <= lagMin {
		return 0
	}

	bestLag, bestCorr := 0, 0.0
	for lag := lagMin; lag <= lagMax; lag++ {
		var corr float64
		for i := 0; i+lag < len(envelope); i++ {
			corr += envelope[i] * envelope[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return 0
	}

	return 60.0 * frameRate / float64(bestLag)
}

// onsetEnvelope is the mean positive spectral flux per frame, mean-removed
// and half-wave rectified so silence does not correlate with itself.
func onsetEnvelope(spectra [][]float64) []float64 {
	if len(spectra) < 2 {
		return nil
	}

	envelope := make([]float64, len(spectra)-1)
	for i := 1; i < len(spectra); i++ {
		var flux float64
		prev, cur := spectra[i-1], spectra[i]
		for k := range cur {
			if d := cur[k] - prev[k]; d > 0 {
				flux += d
			}
		}
		envelope[i-1] = flux / float64(len(cur))
	}

	var mean float64
	for _, e := range envelope {
		mean += e
	}
	mean /= float64(len(envelope))
	for i := range envelope {
		envelope[i] -= mean
		if envelope[i] < 0 {
			envelope[i] = 0
		}
	}
	return envelope
}
