package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/sources/mock"
)

// printSink prints notifications as they arrive.
type printSink struct{}

func (printSink) Notify(n notify.Notification) {
	fmt.Printf("[%s] %s\n", n.Kind, n.Message)
}

func main() {
	// Usage: go run . -region DE -days 14 -refreshes 3

	regionFlag := flag.String("region", "global", "global or a country code")
	daysFlag := flag.Int("days", 14, "Days of history to generate")
	refreshesFlag := flag.Int("refreshes", 1, "How many refreshes to run before printing")
	failRateFlag := flag.Float64("fail-rate", 0, "Probability that a fetch fails")

	flag.Parse()

	r, err := refresh.New(refresh.Config{
		Source: mock.New(mock.Options{Delay: 200 * time.Millisecond, FailRate: *failRateFlag, Jitter: 0.01}),
		Sink:   printSink{},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	for i := 0; i < *refreshesFlag; i++ {
		// Failures are announced through the sink; the previous data stays.
		r.Refresh(ctx, true)
	}

	data, ok := r.Current()
	if !ok {
		fmt.Println("No data could be loaded.")
		return
	}

	entity := covid.Entity(*regionFlag)
	snap, ok := data.Snapshot(entity)
	if !ok {
		fmt.Printf("Unknown region %q\n", *regionFlag)
		return
	}

	var counts covid.Counts
	if c, found := covid.FindCountry(data.Countries, *regionFlag); found {
		counts = covid.CountsFromCountry(c)
	} else {
		counts = covid.CountsFromSnapshot(snap)
	}
	rates := covid.ComputeRates(counts).Strings()

	fmt.Printf("Cases %s, deaths %s, recovered %s, active %s\n",
		covid.Comma(snap.TotalCases), covid.Comma(snap.TotalDeaths), covid.Comma(snap.TotalRecovered), covid.Comma(snap.ActiveCases))
	fmt.Printf("Per 100K %s, mortality %s, recovery %s\n", rates.CasesPer100k, rates.MortalityRate, rates.RecoveryRate)

	points, err := covid.NewGenerator(0).Series(entity, *daysFlag)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, p := range points {
		fmt.Println(p.DateString(), covid.CompactCount(p.Cases), covid.CompactCount(p.Deaths), covid.CompactCount(p.Recovered))
	}
}
