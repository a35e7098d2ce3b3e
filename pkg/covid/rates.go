package covid

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered for metrics whose denominator is missing or zero.
const NotAvailable = "N/A"

// Counts is the input of ComputeRates. Population is optional; zero means
// unknown.
type Counts struct {
	Cases      int64
	Deaths     int64
	Recovered  int64
	Population int64
}

// CountsFromSnapshot builds Counts from a snapshot. Snapshots carry no
// population, so per-100k is never available for them.
func CountsFromSnapshot(s StatSnapshot) Counts {
	return Counts{Cases: s.TotalCases, Deaths: s.TotalDeaths, Recovered: s.TotalRecovered}
}

// CountsFromCountry builds Counts from a country row.
func CountsFromCountry(c CountryRecord) Counts {
	return Counts{Cases: c.Cases, Deaths: c.Deaths, Recovered: c.Recovered, Population: c.Population}
}

// Metric is an optional number. OK is false when the value is not available.
type Metric struct {
	Value float64
	OK    bool
}

// MarshalJSON encodes unavailable metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.OK {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// Percent renders the metric as "12.34%".
func (m Metric) Percent() string {
	if !m.OK {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", m.Value)
}

// Count renders the metric as an integer with thousands separators.
func (m Metric) Count() string {
	if !m.OK {
		return NotAvailable
	}
	return humanize.Comma(int64(m.Value))
}

// Rates are the derived, human-facing metrics for one entity.
type Rates struct {
	CasesPer100k  Metric `json:"cases_per_100k"`
	MortalityRate Metric `json:"mortality_rate"`
	RecoveryRate  Metric `json:"recovery_rate"`
}

// ComputeRates derives per-100k incidence, mortality rate and recovery rate.
// It is pure and total: zero denominators yield unavailable metrics.
func ComputeRates(c Counts) Rates {
	var r Rates
	if c.Population > 0 {
		r.CasesPer100k = Metric{Value: math.Round(float64(c.Cases) / float64(c.Population) * 100000), OK: true}
	}
	if c.Cases > 0 {
		r.MortalityRate = Metric{Value: round2(float64(c.Deaths) / float64(c.Cases) * 100), OK: true}
		r.RecoveryRate = Metric{Value: round2(float64(c.Recovered) / float64(c.Cases) * 100), OK: true}
	}
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RateStrings is the display form of Rates.
type RateStrings struct {
	CasesPer100k  string `json:"cases_per_100k"`
	MortalityRate string `json:"mortality_rate"`
	RecoveryRate  string `json:"recovery_rate"`
}

// Strings formats the rates for summary cards.
func (r Rates) Strings() RateStrings {
	return RateStrings{
		CasesPer100k:  r.CasesPer100k.Count(),
		MortalityRate: r.MortalityRate.Percent(),
		RecoveryRate:  r.RecoveryRate.Percent(),
	}
}
