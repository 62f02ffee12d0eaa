package common

import (
	"math"
	"testing"
)

func TestWrapDegrees(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside", 90, 90},
		{"full_turn", 360, 0},
		{"over", 450, 90},
		{"negative", -90, 270},
		{"large_negative", -720, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := WrapDegrees(c.in); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("WrapDegrees(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestDegreesRoundTrip(t *testing.T) {
	if got := DegreesToRadians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Fatalf("DegreesToRadians(180) = %v", got)
	}
	if got := RadiansToDegrees(DegreesToRadians(37)); math.Abs(got-37) > 1e-9 {
		t.Fatalf("round trip = %v", got)
	}
	if got := Lerp(2, 4, 0.25); got != 2.5 {
		t.Fatalf("Lerp = %v", got)
	}
}
