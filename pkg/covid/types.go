package covid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entity identifies the scope of a statistic: the global aggregate or a
// single country code.
type Entity string

// Global is the sentinel entity for worldwide totals.
const Global Entity = "global"

// IsGlobal reports whether e selects the worldwide aggregate. The empty
// entity is treated as global.
func (e Entity) IsGlobal() bool {
	return e == "" || strings.EqualFold(string(e), string(Global))
}

// ErrInvalidArgument is returned when a caller violates a precondition,
// such as asking for a non-positive window.
var ErrInvalidArgument = errors.New("invalid argument")

// StatSnapshot holds cumulative counts for one entity at a point in time.
type StatSnapshot struct {
	TotalCases     int64 `json:"total_cases"`
	TotalDeaths    int64 `json:"total_deaths"`
	TotalRecovered int64 `json:"total_recovered"`
	ActiveCases    int64 `json:"active_cases"`
}

// CountryRecord is one row of the country reference list.
type CountryRecord struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Cases      int64  `json:"cases"`
	Deaths     int64  `json:"deaths"`
	Recovered  int64  `json:"recovered"`
	Population int64  `json:"population"`
}

// Validate checks the record invariants.
func (c CountryRecord) Validate() error {
	switch {
	case c.Code == "":
		return fmt.Errorf("%w: empty country code", ErrInvalidArgument)
	case c.Cases < 0 || c.Deaths < 0 || c.Recovered < 0:
		return fmt.Errorf("%w: %s has negative counts", ErrInvalidArgument, c.Code)
	case c.Population <= 0:
		return fmt.Errorf("%w: %s has non-positive population", ErrInvalidArgument, c.Code)
	case c.Deaths > c.Cases:
		return fmt.Errorf("%w: %s deaths exceed cases", ErrInvalidArgument, c.Code)
	case c.Recovered > c.Cases:
		return fmt.Errorf("%w: %s recovered exceed cases", ErrInvalidArgument, c.Code)
	}
	return nil
}

// Snapshot converts a country row into the summary-card shape.
func (c CountryRecord) Snapshot() StatSnapshot {
	active := c.Cases - c.Deaths - c.Recovered
	if active < 0 {
		active = 0
	}
	return StatSnapshot{
		TotalCases:     c.Cases,
		TotalDeaths:    c.Deaths,
		TotalRecovered: c.Recovered,
		ActiveCases:    active,
	}
}

// DailyPoint is one day of a generated series.
type DailyPoint struct {
	Date      time.Time `json:"-"`
	Cases     int64     `json:"cases"`
	Deaths    int64     `json:"deaths"`
	Recovered int64     `json:"recovered"`
}

// DateLayout is the ISO calendar date format used for DailyPoint dates.
const DateLayout = "2006-01-02"

// DateString returns the ISO date of the point.
func (p DailyPoint) DateString() string {
	return p.Date.Format(DateLayout)
}

// Dataset is everything a refresh produces. It is replaced wholesale.
type Dataset struct {
	Global    StatSnapshot    `json:"global"`
	Countries []CountryRecord `json:"countries"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Snapshot returns the counts for the given entity. ok is false when the
// entity names a country that is not in the dataset.
func (d Dataset) Snapshot(e Entity) (StatSnapshot, bool) {
	if e.IsGlobal() {
		return d.Global, true
	}
	c, ok := FindCountry(d.Countries, string(e))
	if !ok {
		return StatSnapshot{}, false
	}
	return c.Snapshot(), true
}

// Validate checks every country row and rejects negative global counts.
func (d Dataset) Validate() error {
	g := d.Global
	if g.TotalCases < 0 || g.TotalDeaths < 0 || g.TotalRecovered < 0 || g.ActiveCases < 0 {
		return fmt.Errorf("%w: negative global counts", ErrInvalidArgument)
	}
	for _, c := range d.Countries {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy that shares no slice storage with d.
func (d Dataset) Clone() Dataset {
	out := d
	if d.Countries != nil {
		out.Countries = make([]CountryRecord, len(d.Countries))
		copy(out.Countries, d.Countries)
	}
	return out
}
