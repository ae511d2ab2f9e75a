package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// FFT returns the discrete Fourier transform of a real series of any length.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum returns |X_k|²/n for k in [0, n/2], with the mean removed first.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := FFT(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(spectrum[i])
		ps[i] = a * a / float64(n)
	}

	return ps
}

// Frequencies returns the frequency of each PowerSpectrum bin for a series
// sampled every dt.
func Frequencies(n int, dt float64) []float64 {
	if n == 0 {
		return nil
	}
	f := make([]float64, n/2+1)
	for i := range f {
		f[i] = float64(i) / (float64(n) * dt)
	}
	return f
}
