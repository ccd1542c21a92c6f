package sim

import "log"

// Freq is a frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive cycles.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return VTimeInSec(1.0 / f)
}

// NCyclesLater returns the time n cycles after now.
func (f Freq) NCyclesLater(n uint32, now VTimeInSec) VTimeInSec {
	return now + VTimeInSec(n)*f.Period()
}
