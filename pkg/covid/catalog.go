package covid

// MockGlobal is the worldwide snapshot served by the mock source.
var MockGlobal = StatSnapshot{
	TotalCases:     704234915,
	TotalDeaths:    7010681,
	TotalRecovered: 675825234,
	ActiveCases:    21399000,
}

var mockCountries = []CountryRecord{
	{Code: "US", Name: "United States", Cases: 103436829, Deaths: 1127152, Recovered: 101000000, Population: 331900000},
	{Code: "IN", Name: "India", Cases: 44690738, Deaths: 530779, Recovered: 44153796, Population: 1380000000},
	{Code: "FR", Name: "France", Cases: 38997490, Deaths: 174627, Recovered: 38500000, Population: 67390000},
	{Code: "DE", Name: "Germany", Cases: 38437756, Deaths: 174979, Recovered: 38000000, Population: 83240000},
	{Code: "BR", Name: "Brazil", Cases: 37519960, Deaths: 689016, Recovered: 36500000, Population: 215300000},
	{Code: "JP", Name: "Japan", Cases: 33803572, Deaths: 74694, Recovered: 33500000, Population: 125800000},
	{Code: "KR", Name: "South Korea", Cases: 31441184, Deaths: 34141, Recovered: 31200000, Population: 51780000},
	{Code: "IT", Name: "Italy", Cases: 25603510, Deaths: 190357, Recovered: 25200000, Population: 59550000},
}

// MockCountries returns a fresh copy of the country reference list.
func MockCountries() []CountryRecord {
	out := make([]CountryRecord, len(mockCountries))
	copy(out, mockCountries)
	return out
}
