package covid

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// CompactCount shortens large values for chart axes: 1.2M, 3.4K, 999.
func CompactCount(v int64) string {
	switch {
	case v >= 1000000:
		return fmt.Sprintf("%.1fM", float64(v)/1000000)
	case v >= 1000:
		return fmt.Sprintf("%.1fK", float64(v)/1000)
	default:
		return strconv.FormatInt(v, 10)
	}
}

// Comma formats a count with thousands separators.
func Comma(v int64) string {
	return humanize.Comma(v)
}

// AxisDateLabel formats a date for the chart x axis. Medium windows use the
// numeric month/day form; short and long windows spell the month.
func AxisDateLabel(t time.Time, window int) string {
	if window >= 30 && window < 90 {
		return t.Format("1/2")
	}
	return t.Format("Jan 2")
}

// TooltipDate is the long form shown when hovering a point.
func TooltipDate(t time.Time) string {
	return t.Format("Mon, Jan 2, 2006")
}
