package selection

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/viralscope/viralscope/pkg/covid"
)

// ChartStyle is how the trend chart is drawn.
type ChartStyle string

const (
	StyleLine ChartStyle = "line"
	StyleArea ChartStyle = "area"
	StyleBar  ChartStyle = "bar"
)

// Styles lists the chart styles in menu order.
var Styles = []ChartStyle{StyleLine, StyleArea, StyleBar}

// Windows lists the selectable time windows in days.
var Windows = []int{7, 30, 90}

// DefaultWindow is used when no valid window is requested.
const DefaultWindow = 30

// Selection is the ephemeral dashboard state. It is never persisted.
type Selection struct {
	Entity covid.Entity
	Window int
	Style  ChartStyle
}

// Default is the selection shown on first load.
func Default() Selection {
	return Selection{Entity: covid.Global, Window: DefaultWindow, Style: StyleLine}
}

// Parse reads region, days and type from query values. Unknown regions
// fall back to global, unsupported windows to 30 days and unknown styles to
// line. countries may be nil, in which case any region code is accepted.
func Parse(q url.Values, countries []covid.CountryRecord) Selection {
	sel := Default()

	if region := strings.TrimSpace(q.Get("region")); region != "" && !covid.Entity(region).IsGlobal() {
		if countries == nil {
			sel.Entity = covid.Entity(strings.ToUpper(region))
		} else if c, ok := covid.FindCountry(countries, region); ok {
			sel.Entity = covid.Entity(c.Code)
		}
	}

	if days, err := strconv.Atoi(q.Get("days")); err == nil && ValidWindow(days) {
		sel.Window = days
	}

	if style, ok := ParseStyle(q.Get("type")); ok {
		sel.Style = style
	}
	return sel
}

// ValidWindow reports whether days is one of the selectable windows.
func ValidWindow(days int) bool {
	for _, w := range Windows {
		if w == days {
			return true
		}
	}
	return false
}

// ParseStyle matches a chart style name, ignoring case.
func ParseStyle(v string) (ChartStyle, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range Styles {
		if string(s) == v {
			return s, true
		}
	}
	return "", false
}

// Query encodes the selection back into URL query values.
func (s Selection) Query() url.Values {
	q := url.Values{}
	q.Set("region", string(s.Entity))
	q.Set("days", strconv.Itoa(s.Window))
	q.Set("type", string(s.Style))
	return q
}

// With returns a copy of s with the entity replaced.
func (s Selection) With(e covid.Entity) Selection {
	s.Entity = e
	return s
}
