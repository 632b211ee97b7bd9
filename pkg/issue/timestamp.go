package issue

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Timestamp is a point in a beatmap, in milliseconds from the start of the
// audio.
type Timestamp float64

// String renders the editor form "mm:ss:mmm - ". Sub-millisecond fractions
// are truncated, and negative times render with a leading minus.
func (t Timestamp) String() string {
	ms := float64(t)
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	total, err := safecast.Truncate[int64](math.Floor(ms))
	if err != nil {
		return fmt.Sprintf("%s%.0fms - ", sign, ms)
	}
	minutes := total / 60000
	seconds := total / 1000 % 60
	millis := total % 1000
	return fmt.Sprintf("%s%02d:%02d:%03d - ", sign, minutes, seconds, millis)
}

// Millis returns the timestamp as float milliseconds.
func (t Timestamp) Millis() float64 {
	return float64(t)
}
