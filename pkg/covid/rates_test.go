package covid

import (
	"encoding/json"
	"testing"
)

func TestComputeRates(t *testing.T) {
	tests := []struct {
		name      string
		in        Counts
		per100k   string
		mortality string
		recovery  string
	}{
		{
			name:      "simple percentages",
			in:        Counts{Cases: 100, Deaths: 2, Recovered: 95},
			per100k:   NotAvailable,
			mortality: "2.00%",
			recovery:  "95.00%",
		},
		{
			name:      "united states",
			in:        Counts{Cases: 103436829, Deaths: 1127152, Recovered: 101000000, Population: 331900000},
			per100k:   "31,165",
			mortality: "1.09%",
			recovery:  "97.64%",
		},
		{
			name:      "zero cases",
			in:        Counts{Cases: 0, Deaths: 0, Recovered: 0, Population: 1000},
			per100k:   "0",
			mortality: NotAvailable,
			recovery:  NotAvailable,
		},
		{
			name:      "negative population",
			in:        Counts{Cases: 10, Deaths: 1, Recovered: 3, Population: -5},
			per100k:   NotAvailable,
			mortality: "10.00%",
			recovery:  "30.00%",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeRates(tc.in).Strings()
			if got.CasesPer100k != tc.per100k {
				t.Errorf("per100k: want %q, got %q", tc.per100k, got.CasesPer100k)
			}
			if got.MortalityRate != tc.mortality {
				t.Errorf("mortality: want %q, got %q", tc.mortality, got.MortalityRate)
			}
			if got.RecoveryRate != tc.recovery {
				t.Errorf("recovery: want %q, got %q", tc.recovery, got.RecoveryRate)
			}
		})
	}
}

func TestComputeRatesPer100kValue(t *testing.T) {
	r := ComputeRates(Counts{Cases: 103436829, Population: 331900000})
	if !r.CasesPer100k.OK || r.CasesPer100k.Value != 31165 {
		t.Fatalf("expected 31165, got %+v", r.CasesPer100k)
	}
}

func TestComputeRatesIsPure(t *testing.T) {
	in := CountsFromCountry(MockCountries()[1])
	if ComputeRates(in) != ComputeRates(in) {
		t.Fatal("repeated calls returned different rates")
	}
}

func TestCountsFromSnapshotHasNoPopulation(t *testing.T) {
	r := ComputeRates(CountsFromSnapshot(MockGlobal))
	if r.CasesPer100k.OK {
		t.Fatal("snapshot rates should not have per-100k")
	}
	if got := r.MortalityRate.Percent(); got != "1.00%" {
		t.Fatalf("expected global mortality 1.00%%, got %s", got)
	}
}

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(ComputeRates(Counts{Cases: 100, Deaths: 2, Recovered: 95}))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"cases_per_100k":null,"mortality_rate":2,"recovery_rate":95}`
	if string(data) != want {
		t.Fatalf("want %s, got %s", want, data)
	}
}
