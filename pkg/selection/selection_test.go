package selection

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/viralscope/viralscope/pkg/covid"
)

func TestParse(t *testing.T) {
	countries := covid.MockCountries()
	tests := []struct {
		name  string
		query string
		want  Selection
	}{
		{"defaults", "", Selection{Entity: covid.Global, Window: 30, Style: StyleLine}},
		{"country lower case", "region=de&days=7&type=bar", Selection{Entity: "DE", Window: 7, Style: StyleBar}},
		{"unknown region", "region=XX&days=90&type=AREA", Selection{Entity: covid.Global, Window: 90, Style: StyleArea}},
		{"unsupported window", "days=14", Selection{Entity: covid.Global, Window: 30, Style: StyleLine}},
		{"garbage window", "days=abc&type=pie", Selection{Entity: covid.Global, Window: 30, Style: StyleLine}},
		{"explicit global", "region=Global", Selection{Entity: covid.Global, Window: 30, Style: StyleLine}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := Parse(q, countries); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseWithoutCatalog(t *testing.T) {
	q := url.Values{"region": {"zz"}}
	if got := Parse(q, nil); got.Entity != "ZZ" {
		t.Fatalf("expected ZZ, got %q", got.Entity)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	sel := Selection{Entity: "JP", Window: 90, Style: StyleArea}
	if got := Parse(sel.Query(), covid.MockCountries()); !reflect.DeepEqual(got, sel) {
		t.Fatalf("want %+v, got %+v", sel, got)
	}
}

func TestDropdownTransitions(t *testing.T) {
	var d Dropdown
	if d.State != Closed {
		t.Fatal("dropdown should start closed")
	}

	d.SetSearch("ignored")
	if d.Search != "" {
		t.Fatal("search should be ignored while closed")
	}

	d.Toggle()
	if d.State != Open {
		t.Fatal("toggle should open")
	}
	d.SetSearch("ja")
	if got := d.Options(covid.MockCountries()); len(got) != 1 || got[0].Code != "JP" {
		t.Fatalf("unexpected options %+v", got)
	}

	if e := d.Choose("JP"); e != "JP" {
		t.Fatalf("choose returned %q", e)
	}
	if d.State != Closed || d.Search != "" {
		t.Fatalf("choose should close and clear search, got %+v", d)
	}

	d.Toggle()
	d.Toggle()
	if d.State != Closed {
		t.Fatal("double toggle should close")
	}
}

func TestDropdownOutsideInteraction(t *testing.T) {
	inside := DetectorFunc(func(target string) bool { return target == "region-menu" })
	d := Dropdown{State: Open, Search: "ind"}

	if d.Interact("region-menu", inside) {
		t.Fatal("interaction inside must not close")
	}
	if d.State != Open {
		t.Fatal("menu should still be open")
	}
	if !d.Interact("chart", inside) {
		t.Fatal("interaction outside should close")
	}
	if d.State != Closed || d.Search != "ind" {
		t.Fatalf("unexpected state after outside click: %+v", d)
	}
	if d.Interact("chart", inside) {
		t.Fatal("closed menu should ignore interactions")
	}
	if Open.String() != "open" || Closed.String() != "closed" {
		t.Fatal("unexpected state names")
	}
}
