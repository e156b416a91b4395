package domain

import (
	"math"
	"testing"
)

func TestParseLatLong(t *testing.T) {
	c, err := ParseLatLong("52.52, 13.405")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lat != 52.52 || c.Lon != 13.405 {
		t.Fatalf("got %+v, want lat=52.52 lon=13.405", c)
	}

	if _, err := ParseLatLong("52.52"); err == nil {
		t.Fatal("expected error for missing longitude")
	}
	if _, err := ParseLatLong("abc,13.4"); err == nil {
		t.Fatal("expected error for non-numeric latitude")
	}
}

func TestLocatable(t *testing.T) {
	cases := []struct {
		location string
		want     bool
	}{
		{"52.52,13.405", true},
		{"", false},
		{"none", false},
		{"None,None", false},
		{"52.52,none", false},
	}
	for _, c := range cases {
		if got := Locatable(c.location); got != c.want {
			t.Fatalf("Locatable(%q) = %v, want %v", c.location, got, c.want)
		}
	}
}

func TestHaversineKm(t *testing.T) {
	berlin := Coordinates{Lat: 52.52, Lon: 13.405}
	hamburg := Coordinates{Lat: 53.551, Lon: 9.993}

	got := HaversineKm(berlin, hamburg)
	if math.Abs(got-255) > 5 {
		t.Fatalf("Berlin-Hamburg = %.1f km, want ~255", got)
	}

	if d := HaversineKm(berlin, berlin); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}
}
