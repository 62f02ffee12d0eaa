package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapDegrees maps deg into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
