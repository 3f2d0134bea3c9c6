package recurring

// IntervalCadence is due every Months months after the anchor month.
type IntervalCadence struct {
	Months int
}

func (c *IntervalCadence) Due(diffMonths int) bool {
	// A non-positive interval would make every month due.
	if c.Months <= 0 || diffMonths <= 0 {
		return false
	}
	return diffMonths%c.Months == 0
}

func (c *IntervalCadence) Interval() int {
	return max(c.Months, 0)
}

// NeverCadence is the cadence of one-off occurrences.
type NeverCadence struct{}

func (NeverCadence) Due(int) bool  { return false }
func (NeverCadence) Interval() int { return 0 }
