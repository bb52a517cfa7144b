package audio

import "math"

// linearVolume maps a UI volume on a logarithmic 0-100 scale to a linear
// gain in [0, 1].
func linearVolume(v int) float64 {
	x := float64(v) / 100
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return -math.Log(1-x) / math.Log(100)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
