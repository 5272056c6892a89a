// Package scale provides the catalog of geographic scale profiles.
// Each profile is calibrated against real-world figures: a city the size of
// Paris, a region the size of Île-de-France, and so on up to the habitable
// surface of the Earth. Pure lookup, no state.
package scale

// Profile describes one geographic scale: its grid geometry, the real-world
// speeds of humans and the controller at that scale, and how much simulated
// time one tick covers.
type Profile struct {
	Key                string  `json:"key"`
	Name               string  `json:"name"`
	AreaKm2            float64 `json:"area_km2"`
	GridSize           int     `json:"grid_size"` // Cells per side
	CellKm             float64 `json:"cell_km"`
	HumanSpeedKmh      float64 `json:"human_speed_kmh"`
	ControllerSpeedKmh float64 `json:"controller_speed_kmh"`
	TickMinutes        int     `json:"tick_minutes"`
	Description        string  `json:"description"`
}

// DefaultKey is the profile used when a lookup key is unrecognized.
const DefaultKey = "country"

var profiles = map[string]Profile{
	"city": {
		Key:                "city",
		Name:               "City (Paris)",
		AreaKm2:            105,
		GridSize:           15,
		CellKm:             0.68,
		HumanSpeedKmh:      5,
		ControllerSpeedKmh: 50,
		TickMinutes:        10,
		Description:        "Dense urban zone",
	},
	"region": {
		Key:                "region",
		Name:               "Region (Île-de-France)",
		AreaKm2:            12012,
		GridSize:           15,
		CellKm:             7.3,
		HumanSpeedKmh:      5,
		ControllerSpeedKmh: 200,
		TickMinutes:        60,
		Description:        "Regional zone",
	},
	"country": {
		Key:                "country",
		Name:               "Country (France)",
		AreaKm2:            643801,
		GridSize:           15,
		CellKm:             53.5,
		HumanSpeedKmh:      5,
		ControllerSpeedKmh: 500,
		TickMinutes:        360,
		Description:        "National scale",
	},
	"continent": {
		Key:                "continent",
		Name:               "Continent (Europe)",
		AreaKm2:            10180000,
		GridSize:           15,
		CellKm:             213,
		HumanSpeedKmh:      5,
		ControllerSpeedKmh: 800,
		TickMinutes:        1440,
		Description:        "Continental scale",
	},
	"world": {
		Key:                "world",
		Name:               "World (habitable Earth)",
		AreaKm2:            150000000,
		GridSize:           15,
		CellKm:             816,
		HumanSpeedKmh:      5,
		ControllerSpeedKmh: 1000,
		TickMinutes:        4320,
		Description:        "Planetary scale",
	},
}

// Order lists profile keys from smallest to largest scale.
var Order = []string{"city", "region", "country", "continent", "world"}

// Lookup returns the profile for the given key, falling back to the default
// profile when the key is unrecognized. It never fails.
func Lookup(key string) Profile {
	if p, ok := profiles[key]; ok {
		return p
	}
	return profiles[DefaultKey]
}

// Known reports whether key names a catalog profile.
func Known(key string) bool {
	_, ok := profiles[key]
	return ok
}

// All returns the full catalog keyed by profile key.
func All() map[string]Profile {
	out := make(map[string]Profile, len(profiles))
	for k, p := range profiles {
		out[k] = p
	}
	return out
}
