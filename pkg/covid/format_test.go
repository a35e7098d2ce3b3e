package covid

import (
	"testing"
	"time"
)

func TestCompactCount(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1500:    "1.5K",
		1234567: "1.2M",
	}
	for in, want := range tests {
		if got := CompactCount(in); got != want {
			t.Errorf("CompactCount(%d): want %q, got %q", in, want, got)
		}
	}
}

func TestDateLabels(t *testing.T) {
	d := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	if got := AxisDateLabel(d, 7); got != "Mar 3" {
		t.Errorf("7 day label: %q", got)
	}
	if got := AxisDateLabel(d, 30); got != "3/3" {
		t.Errorf("30 day label: %q", got)
	}
	if got := AxisDateLabel(d, 90); got != "Mar 3" {
		t.Errorf("90 day label: %q", got)
	}
	if got := TooltipDate(d); got != "Sun, Mar 3, 2024" {
		t.Errorf("tooltip: %q", got)
	}
	if got := Comma(704234915); got != "704,234,915" {
		t.Errorf("comma: %q", got)
	}
}
