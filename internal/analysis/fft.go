package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort = errors.New("analysis: need at least 4 samples")
	ErrFlat     = errors.New("analysis: signal has no oscillation")
)

// FFT returns the discrete Fourier transform of data. Any length works.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitude of the first half of the transform.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-zero frequency in Hz of
// samples taken every dt seconds. The mean is removed first.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if len(samples) < 4 || dt <= 0 {
		return 0, ErrTooShort
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	peak, peakAt := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			peak, peakAt = ps[i], i
		}
	}
	if peakAt == 0 || peak < 1e-9 {
		return 0, ErrFlat
	}
	return float64(peakAt) / (float64(len(samples)) * dt), nil
}
