package mock

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/viralscope/viralscope/pkg/covid"
)

// DefaultDelay stands in for the latency of a real API call.
const DefaultDelay = 1500 * time.Millisecond

// ErrSimulatedFailure is returned when the source is told to fail.
var ErrSimulatedFailure = errors.New("simulated fetch failure")

// Options tune the mock source.
type Options struct {
	// Delay before Fetch returns. Negative means DefaultDelay; zero disables it.
	Delay time.Duration
	// FailRate is the probability in [0,1] that a fetch fails.
	FailRate float64
	// Jitter perturbs every count by up to this fraction on each fetch so
	// successive refreshes differ. Zero serves the reference figures as is.
	Jitter float64
	// Seed for the failure and jitter decisions. Zero picks one from the clock.
	Seed int64
}

// Source serves the reference dataset after an artificial delay.
type Source struct {
	delay    time.Duration
	failRate float64
	jitter   float64

	mu       sync.Mutex
	rng      *rand.Rand
	failNext int
}

// New returns a mock source.
func New(opts Options) *Source {
	delay := opts.Delay
	if delay < 0 {
		delay = DefaultDelay
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		delay:    delay,
		failRate: clamp01(opts.FailRate),
		jitter:   clamp01(opts.Jitter),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Source) Name() string { return "mock" }

// FailNext forces the next n fetches to fail regardless of FailRate.
func (s *Source) FailNext(n int) {
	s.mu.Lock()
	s.failNext += n
	s.mu.Unlock()
}

func (s *Source) Fetch(ctx context.Context) (covid.Dataset, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return covid.Dataset{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return covid.Dataset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		return covid.Dataset{}, ErrSimulatedFailure
	}
	if s.failRate > 0 && s.rng.Float64() < s.failRate {
		return covid.Dataset{}, ErrSimulatedFailure
	}

	global := covid.MockGlobal
	countries := covid.MockCountries()
	if s.jitter > 0 {
		global = covid.StatSnapshot{
			TotalCases:     s.perturb(global.TotalCases),
			TotalDeaths:    s.perturb(global.TotalDeaths),
			TotalRecovered: s.perturb(global.TotalRecovered),
			ActiveCases:    s.perturb(global.ActiveCases),
		}
		for i := range countries {
			c := &countries[i]
			c.Cases = s.perturb(c.Cases)
			c.Deaths = min64(s.perturb(c.Deaths), c.Cases)
			c.Recovered = min64(s.perturb(c.Recovered), c.Cases)
		}
	}

	return covid.Dataset{Global: global, Countries: countries}, nil
}

func (s *Source) perturb(v int64) int64 {
	f := 1 + (s.rng.Float64()*2-1)*s.jitter
	out := int64(math.Floor(float64(v) * f))
	if out < 0 {
		return 0
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
