package loadhistory

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"Helix/internal/calc/calcerr"
)

// Spectrum returns the one-sided amplitude spectrum of samples taken at
// rate Hz.
func Spectrum(samples []float64, rate float64) (freqs, amps []float64, err error) {
	n := len(samples)
	if n < 2 {
		return nil, nil, calcerr.Invalid("spectrum needs at least two samples, got %d", n)
	}
	if !(rate > 0) {
		return nil, nil, calcerr.Invalid("sample rate must be positive, got %g", rate)
	}
	y := fft.FFTReal(samples)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) * rate / float64(n)
		mag := cmplx.Abs(y[i])
		if i == 0 {
			amps[i] = mag / float64(n)
		} else {
			amps[i] = 2 * mag / float64(n)
		}
	}
	return freqs, amps, nil
}

// DominantFrequency is the frequency of the largest non-DC spectral peak.
func DominantFrequency(samples []float64, rate float64) (hz, amplitude float64, err error) {
	freqs, amps, err := Spectrum(samples, rate)
	if err != nil {
		return 0, 0, err
	}
	best := 1
	for i := 2; i < len(amps); i++ {
		if amps[i] > amps[best] {
			best = i
		}
	}
	return freqs[best], amps[best], nil
}
