package date

import "fmt"

// Range represents a range of dates, both bounds included.
type Range struct{ From, To Date }

// Trailing returns the range that ends on d and starts days before it.
//
// Trailing(d, 5) spans six calendar days: d-5 through d.
func Trailing(d Date, days int) Range { return Range{From: d.Add(-days), To: d} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of calendar days in the range.
func (r Range) Days() int {
	if r.To.Before(r.From) {
		return 0
	}
	return int(r.To.time().Sub(r.From.time())/Day) + 1
}

// String returns "from..to".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
