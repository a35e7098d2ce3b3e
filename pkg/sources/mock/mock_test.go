package mock

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/viralscope/viralscope/pkg/covid"
)

func TestFetchReturnsReferenceData(t *testing.T) {
	s := New(Options{Delay: 0, Seed: 1})
	d, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.Global != covid.MockGlobal {
		t.Fatalf("unexpected global snapshot %+v", d.Global)
	}
	if !reflect.DeepEqual(d.Countries, covid.MockCountries()) {
		t.Fatalf("unexpected countries %+v", d.Countries)
	}
}

func TestFailNext(t *testing.T) {
	s := New(Options{Delay: 0, Seed: 1})
	s.FailNext(2)
	for i := 0; i < 2; i++ {
		if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrSimulatedFailure) {
			t.Fatalf("fetch %d: expected simulated failure, got %v", i, err)
		}
	}
	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("third fetch should succeed, got %v", err)
	}
}

func TestFailRateOne(t *testing.T) {
	s := New(Options{Delay: 0, FailRate: 1, Seed: 1})
	if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrSimulatedFailure) {
		t.Fatalf("expected failure, got %v", err)
	}
}

func TestFetchHonoursCancellation(t *testing.T) {
	s := New(Options{Delay: time.Hour, Seed: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Fetch(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestJitterKeepsInvariants(t *testing.T) {
	s := New(Options{Delay: 0, Jitter: 0.5, Seed: 99})
	for i := 0; i < 20; i++ {
		d, err := s.Fetch(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range d.Countries {
			if err := c.Validate(); err != nil {
				t.Fatalf("iteration %d: %v", i, err)
			}
		}
	}
}

func TestNegativeDelayUsesDefault(t *testing.T) {
	s := New(Options{Delay: -1})
	if s.delay != DefaultDelay {
		t.Fatalf("expected default delay, got %s", s.delay)
	}
}
