package scale

import "testing"

func TestLookup_KnownKeys(t *testing.T) {
	for _, key := range Order {
		p := Lookup(key)
		if p.Key != key {
			t.Errorf("Lookup(%q).Key = %q", key, p.Key)
		}
		if p.GridSize <= 0 {
			t.Errorf("%s: grid size %d, want > 0", key, p.GridSize)
		}
		if p.CellKm <= 0 {
			t.Errorf("%s: cell km %v, want > 0", key, p.CellKm)
		}
		if p.TickMinutes <= 0 {
			t.Errorf("%s: tick minutes %d, want > 0", key, p.TickMinutes)
		}
	}
}

func TestLookup_UnknownFallsBackToCountry(t *testing.T) {
	for _, key := range []string{"", "galaxy", "COUNTRY", "pays"} {
		p := Lookup(key)
		if p.Key != DefaultKey {
			t.Errorf("Lookup(%q).Key = %q, want %q", key, p.Key, DefaultKey)
		}
	}
}

func TestCountryProfile_Figures(t *testing.T) {
	p := Lookup("country")
	if p.GridSize != 15 {
		t.Errorf("grid size = %d, want 15", p.GridSize)
	}
	if p.CellKm != 53.5 {
		t.Errorf("cell km = %v, want 53.5", p.CellKm)
	}
	if p.TickMinutes != 360 {
		t.Errorf("tick minutes = %d, want 360", p.TickMinutes)
	}
}

func TestAll_CopiesCatalog(t *testing.T) {
	all := All()
	if len(all) != len(Order) {
		t.Fatalf("catalog size = %d, want %d", len(all), len(Order))
	}
	all["city"] = Profile{Key: "mutated"}
	if Lookup("city").Key != "city" {
		t.Error("mutating All() result leaked into the catalog")
	}
}
