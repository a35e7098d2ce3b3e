package selection

import "github.com/viralscope/viralscope/pkg/covid"

// MenuState is the state of the region dropdown.
type MenuState int

const (
	Closed MenuState = iota
	Open
)

func (s MenuState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Detector decides whether an interaction target lies inside the dropdown.
type Detector interface {
	Contains(target string) bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(target string) bool

func (f DetectorFunc) Contains(target string) bool { return f(target) }

// Dropdown is the region picker: a Closed/Open state machine plus the
// search term typed into it.
type Dropdown struct {
	State  MenuState
	Search string
}

// Toggle flips between Closed and Open.
func (d *Dropdown) Toggle() {
	if d.State == Open {
		d.State = Closed
		return
	}
	d.State = Open
}

// Close moves to Closed. The search term is kept.
func (d *Dropdown) Close() {
	d.State = Closed
}

// SetSearch updates the search term. Typing only makes sense while open.
func (d *Dropdown) SetSearch(term string) {
	if d.State == Open {
		d.Search = term
	}
}

// Choose picks an entity: the menu closes and the search term is cleared.
func (d *Dropdown) Choose(e covid.Entity) covid.Entity {
	d.State = Closed
	d.Search = ""
	return e
}

// Interact handles a pointer interaction anywhere on the page. It closes
// the menu when the detector says the target is outside it and reports
// whether the state changed.
func (d *Dropdown) Interact(target string, inside Detector) bool {
	if d.State != Open || inside == nil {
		return false
	}
	if inside.Contains(target) {
		return false
	}
	d.State = Closed
	return true
}

// Options returns the entries the open menu shows for the current search.
func (d *Dropdown) Options(countries []covid.CountryRecord) []covid.CountryRecord {
	return covid.FilterCountries(countries, d.Search)
}
