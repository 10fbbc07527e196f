// Package lineuniverse holds the curated LVB line universe for Leipzig.
//
// The sets are a conservative snapshot of the selectable timetable IDs
// (tram, bus, regional bus, nightliner). They are used to validate inferred
// line mentions so bare numbers (platforms, times, counts) don't pass as
// lines.
package lineuniverse

import "strings"

// Mode is a coarse transport mode guess for a line id
type Mode string

const (
	// ModeTram is a tram line
	ModeTram Mode = "tram"
	// ModeBus is a city or regional bus line
	ModeBus Mode = "bus"
	// ModeNight is a nightliner line
	ModeNight Mode = "night"
	// ModeSEV is rail replacement service (Schienenersatzverkehr)
	ModeSEV Mode = "sev"
	// ModeUnknown is returned when the id is outside the universe
	ModeUnknown Mode = "unknown"
)

var tramLines = set(
	"1", "2", "3", "4", "7", "8", "9", "10", "11", "12", "14", "15", "16",
)

var busLines = set(
	"60", "61", "62", "63", "65", "66", "67",
	"70", "71", "72", "73", "74", "75", "76", "77", "79",
	"80", "81", "82", "83", "84", "85", "86", "87", "88", "89",
	"90", "91",
	"E",
)

var regionalBusLines = set(
	"108", "131", "143", "162", "172", "173", "175", "176",
)

var nightlinerLines = set(
	"N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8", "N9", "N10",
	"N17", "N60", "NXL",
)

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Normalize trims and uppercases a line identifier
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// IsValid reports whether id belongs to the known line universe.
//
// <base>E variants (e.g. 11E) are accepted when the base line is known; they
// show up in real exports as replacement/special variants even though they are
// not selectable timetable IDs
func IsValid(id string) bool {
	n := Normalize(id)
	if inUniverse(n) {
		return true
	}
	if n != "E" && strings.HasSuffix(n, "E") {
		return inUniverse(strings.TrimSuffix(n, "E"))
	}
	return false
}

func inUniverse(n string) bool {
	if _, ok := tramLines[n]; ok {
		return true
	}
	if _, ok := busLines[n]; ok {
		return true
	}
	if _, ok := regionalBusLines[n]; ok {
		return true
	}
	_, ok := nightlinerLines[n]
	return ok
}

// GuessMode guesses the transport mode for a line id. A non-empty explicit
// label mode (tram, bus, sev) overrides the universe lookup
func GuessMode(id string, explicit Mode) Mode {
	switch explicit {
	case ModeTram, ModeBus, ModeSEV:
		return explicit
	}

	n := Normalize(id)
	if n != "E" && strings.HasSuffix(n, "E") {
		n = strings.TrimSuffix(n, "E")
	}
	if _, ok := tramLines[n]; ok {
		return ModeTram
	}
	if _, ok := nightlinerLines[n]; ok {
		return ModeNight
	}
	if _, ok := busLines[n]; ok {
		return ModeBus
	}
	if _, ok := regionalBusLines[n]; ok {
		return ModeBus
	}
	return ModeUnknown
}
