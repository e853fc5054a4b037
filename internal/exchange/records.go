package exchange

import (
	"time"
)

// Flat records carry only scalars. Relations appear as natural keys
// (country code, operator name, vessel identifier), never as ids.

type CountryRecord struct {
	Code string
	Name string
}

type PortRecord struct {
	Code string
	Name string
}

// NamedRecord is the flat form of operators, vessel types and locations.
type NamedRecord struct {
	Name string
}

// VesselRecord combines a vessel's physical attributes with its active
// registration. Registration fields are empty or nil for a vessel with no
// active registration.
type VesselRecord struct {
	Identifier string
	Built      *int
	Draught    *float64
	Length     *int
	Beam       *int
	Tonnage    *int
	Passengers *int
	Crew       *int
	Decks      *int
	Cabins     *int
	Name       string
	Callsign   string
	MMSI       string
	VesselType string
	Flag       string
	Operator   string
}

// VoyageRecord is one voyage event together with its voyage. EventType and
// Date stay textual so that bad values surface as field errors.
type VoyageRecord struct {
	Identifier string
	Operator   string
	Number     string
	EventType  string
	Port       string
	Date       string
}

type SightingRecord struct {
	Date         time.Time
	Location     string
	Identifier   string
	VoyageNumber string
	IsMyVoyage   bool
}

func parseCountry(v []string) (CountryRecord, error) {
	return CountryRecord{Code: CleanCode(v[0]), Name: TitleCase(v[1])}, nil
}

func parsePort(v []string) (PortRecord, error) {
	return PortRecord{Code: CleanCode(v[0]), Name: TitleCase(v[1])}, nil
}

func parseTitledName(v []string) (NamedRecord, error) {
	return NamedRecord{Name: TitleCase(v[0])}, nil
}

func parseCleanName(v []string) (NamedRecord, error) {
	return NamedRecord{Name: Clean(v[0])}, nil
}

func parseVessel(v []string) (VesselRecord, error) {
	r := VesselRecord{
		Identifier: CleanCode(v[0]),
		Name:       v[10],
		Callsign:   CleanCode(v[11]),
		MMSI:       CleanCode(v[12]),
		VesselType: TitleCase(v[13]),
		Flag:       CleanCode(v[14]),
		Operator:   TitleCase(v[15]),
	}

	ints := []struct {
		name string
		raw  string
		dst  **int
	}{
		{"Year Built", v[1], &r.Built},
		{"Length", v[3], &r.Length},
		{"Beam", v[4], &r.Beam},
		{"Tonnage", v[5], &r.Tonnage},
		{"Passengers", v[6], &r.Passengers},
		{"Crew", v[7], &r.Crew},
		{"Decks", v[8], &r.Decks},
		{"Cabins", v[9], &r.Cabins},
	}
	for _, f := range ints {
		n, err := parseOptionalInt(f.name, f.raw)
		if err != nil {
			return VesselRecord{}, err
		}
		*f.dst = n
	}

	draught, err := parseOptionalDecimal("Draught", v[2])
	if err != nil {
		return VesselRecord{}, err
	}
	r.Draught = draught

	return r, nil
}

func parseVoyage(v []string) (VoyageRecord, error) {
	return VoyageRecord{
		Identifier: CleanCode(v[0]),
		Operator:   TitleCase(v[1]),
		Number:     CleanCode(v[2]),
		EventType:  v[3],
		Port:       CleanCode(v[4]),
		Date:       v[5],
	}, nil
}

func parseSighting(v []string) (SightingRecord, error) {
	date, err := parseDate("Date", v[0])
	if err != nil {
		return SightingRecord{}, err
	}
	mine, err := parseBool("My Voyage", v[4])
	if err != nil {
		return SightingRecord{}, err
	}
	return SightingRecord{
		Date:         date,
		Location:     Clean(v[1]),
		Identifier:   CleanCode(v[2]),
		VoyageNumber: CleanCode(v[3]),
		IsMyVoyage:   mine,
	}, nil
}

// IsIMONumber reports whether id is a 7-digit IMO ship identification
// number with a valid check digit.
func IsIMONumber(id string) bool {
	if !ValidateNumeric(id, 7, 7) {
		return false
	}
	sum := 0
	for i := 0; i < 6; i++ {
		sum += int(id[i]-'0') * (7 - i)
	}
	return sum%10 == int(id[6]-'0')
}
