package covid

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	globalBaseCases  = 1000000
	countryBaseCases = 50000

	deathRatio     = 0.02
	recoveredRatio = 0.95
)

// Rand is the random source consumed by the generator. *rand.Rand
// satisfies it.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// GenerateSeries returns days+1 points, one per calendar day, from days
// days before now through today in ascending order. The entity only picks
// the base magnitude; every entity shares the same trend shape.
func GenerateSeries(rng Rand, now time.Time, entity Entity, days int) ([]DailyPoint, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidArgument, days)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	base := float64(countryBaseCases)
	if entity.IsGlobal() {
		base = globalBaseCases
	}

	today := Today(now)
	points := make([]DailyPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		noise := (rng.Float64() - 0.5) * 0.1
		trend := math.Sin(float64(days-i)/10) * 0.05
		cases := int64(math.Floor(base * (1 + trend + noise)))
		if cases < 0 {
			cases = 0
		}
		points = append(points, DailyPoint{
			Date:      today.AddDate(0, 0, -i),
			Cases:     cases,
			Deaths:    int64(math.Floor(float64(cases) * deathRatio)),
			Recovered: int64(math.Floor(float64(cases) * recoveredRatio)),
		})
	}
	return points, nil
}

// Today truncates t to midnight UTC of its calendar day.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Generator binds a random source and a clock. It is not safe for
// concurrent use unless the Rand is.
type Generator struct {
	Rand Rand
	Now  func() time.Time
}

// NewGenerator returns a generator seeded with seed. A zero seed picks one
// from the wall clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		Rand: rand.New(rand.NewSource(seed)),
		Now:  time.Now,
	}
}

// Series generates a window for entity using the generator's source and clock.
func (g *Generator) Series(entity Entity, days int) ([]DailyPoint, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return GenerateSeries(g.Rand, now(), entity, days)
}

type dailyPointJSON struct {
	Date      string `json:"date"`
	Cases     int64  `json:"cases"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (p DailyPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyPointJSON{
		Date:      p.DateString(),
		Cases:     p.Cases,
		Deaths:    p.Deaths,
		Recovered: p.Recovered,
	})
}

// UnmarshalJSON parses the YYYY-MM-DD form produced by MarshalJSON.
func (p *DailyPoint) UnmarshalJSON(data []byte) error {
	var raw dailyPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("invalid point date %q: %w", raw.Date, err)
	}
	*p = DailyPoint{Date: d, Cases: raw.Cases, Deaths: raw.Deaths, Recovered: raw.Recovered}
	return nil
}
