package pipeline

import "math"

// BandConfig describes the fixed-width latitude bands used for banded trend
// summaries. Min and Max are the outermost band edges in degrees.
type BandConfig struct {
	Min   float64
	Max   float64
	Width float64
}

// Band returns the lower edge of the band containing lat, or false when the
// latitude falls outside the configured range. Bands are (lower, upper]
// intervals with the lowest edge included, so a site exactly on an interior
// edge falls into the band with the lower edge.
func (c BandConfig) Band(lat float64) (float64, bool) {
	if c.Width <= 0 || lat < c.Min || lat > c.Max {
		return 0, false
	}
	if lat == c.Min {
		return c.Min, true
	}
	idx := math.Ceil((lat-c.Min)/c.Width) - 1
	lower := c.Min + idx*c.Width
	// Guard the top edge against float rounding.
	if lower >= c.Max {
		lower = c.Max - c.Width
	}
	return lower, true
}
