package report

import "math"

// SmoothingWindow is the width of the centered moving average applied to
// trend lines before plotting.
const SmoothingWindow = 7

// movingAverage smooths values with a centered window, shrinking the window
// at the edges. NaN entries are excluded from each window's average; a
// window with no finite entries stays NaN so gaps render as gaps.
func movingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(values) {
			hi = len(values) - 1
		}

		sum, n := 0.0, 0
		for j := lo; j <= hi; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			sum += values[j]
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}
