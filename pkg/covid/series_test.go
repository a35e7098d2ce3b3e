package covid

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

var fixedNow = time.Date(2024, time.March, 3, 15, 4, 5, 0, time.UTC)

func TestGenerateSeriesShape(t *testing.T) {
	for _, days := range []int{1, 7, 30, 90} {
		rng := rand.New(rand.NewSource(int64(days)))
		points, err := GenerateSeries(rng, fixedNow, Global, days)
		if err != nil {
			t.Fatalf("days=%d: unexpected error: %v", days, err)
		}
		if len(points) != days+1 {
			t.Fatalf("days=%d: expected %d points, got %d", days, days+1, len(points))
		}
		last := points[len(points)-1].Date
		if !last.Equal(Today(fixedNow)) {
			t.Fatalf("days=%d: expected last point on %s, got %s", days, Today(fixedNow), last)
		}
		for i := 1; i < len(points); i++ {
			if want := points[i-1].Date.AddDate(0, 0, 1); !points[i].Date.Equal(want) {
				t.Fatalf("days=%d: point %d dated %s, want %s", days, i, points[i].Date, want)
			}
		}
		for i, p := range points {
			if p.Cases < 0 {
				t.Fatalf("days=%d: point %d has negative cases %d", days, i, p.Cases)
			}
			if want := int64(math.Floor(float64(p.Cases) * 0.02)); p.Deaths != want {
				t.Fatalf("days=%d: point %d deaths %d, want %d", days, i, p.Deaths, want)
			}
			if want := int64(math.Floor(float64(p.Cases) * 0.95)); p.Recovered != want {
				t.Fatalf("days=%d: point %d recovered %d, want %d", days, i, p.Recovered, want)
			}
		}
	}
}

func TestGenerateSeriesBaseMagnitude(t *testing.T) {
	global, err := GenerateSeries(constRand(0.5), fixedNow, Global, 7)
	if err != nil {
		t.Fatal(err)
	}
	country, err := GenerateSeries(constRand(0.5), fixedNow, Entity("US"), 7)
	if err != nil {
		t.Fatal(err)
	}

	// Day 0 has no trend and zero noise at 0.5.
	if global[0].Cases != 1000000 {
		t.Fatalf("expected global base 1000000, got %d", global[0].Cases)
	}
	if global[0].Deaths != 20000 || global[0].Recovered != 950000 {
		t.Fatalf("unexpected global ratios: %+v", global[0])
	}
	if country[0].Cases != 50000 {
		t.Fatalf("expected country base 50000, got %d", country[0].Cases)
	}

	wantDay5 := int64(math.Floor(1000000 * (1 + math.Sin(0.5)*0.05)))
	if global[5].Cases != wantDay5 {
		t.Fatalf("expected trend value %d on day 5, got %d", wantDay5, global[5].Cases)
	}
}

func TestGenerateSeriesClampsNegative(t *testing.T) {
	points, err := GenerateSeries(constRand(-100), fixedNow, Global, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range points {
		if p.Cases != 0 || p.Deaths != 0 || p.Recovered != 0 {
			t.Fatalf("point %d not clamped: %+v", i, p)
		}
	}
}

func TestGenerateSeriesSeededReproducible(t *testing.T) {
	a, err := GenerateSeries(rand.New(rand.NewSource(42)), fixedNow, Entity("IT"), 30)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateSeries(rand.New(rand.NewSource(42)), fixedNow, Entity("IT"), 30)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different series")
	}
}

func TestGenerateSeriesInvalidWindow(t *testing.T) {
	for _, days := range []int{0, -1, -90} {
		_, err := GenerateSeries(constRand(0.5), fixedNow, Global, days)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("days=%d: expected ErrInvalidArgument, got %v", days, err)
		}
	}
	if _, err := GenerateSeries(nil, fixedNow, Global, 7); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil rng: expected ErrInvalidArgument, got %v", err)
	}
}

func TestGeneratorUsesClock(t *testing.T) {
	g := NewGenerator(7)
	g.Now = func() time.Time { return fixedNow }
	points, err := g.Series(Global, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got := points[0].DateString(); got != "2024-02-25" {
		t.Fatalf("expected first date 2024-02-25, got %s", got)
	}
	if got := points[7].DateString(); got != "2024-03-03" {
		t.Fatalf("expected last date 2024-03-03, got %s", got)
	}
}

func TestDailyPointJSONDate(t *testing.T) {
	p := DailyPoint{Date: Today(fixedNow), Cases: 10, Deaths: 0, Recovered: 9}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"date":"2024-03-03","cases":10,"deaths":0,"recovered":9}`
	if string(data) != want {
		t.Fatalf("want %s, got %s", want, data)
	}

	var back DailyPoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, p) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, p)
	}
}
