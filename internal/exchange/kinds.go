package exchange

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
)

// nonBlank matches a quoted value that is not empty or whitespace only.
const nonBlank = `"\s*[^"\s][\s\S]*"`

var (
	countryPattern  = `^"[A-Za-z]{2}",` + nonBlank + `.?$`
	portPattern     = `^"[A-Za-z]{2}[A-Za-z0-9]{3}",` + nonBlank + `.?$`
	namedPattern    = `^` + nonBlank + `.?$`
	vesselPattern   = `^"\d{7}","\d*","[0-9.]*","\d*","\d*","\d*","\d*","\d*","\d*","\d*","[^"]+","[^"\s]+","\d{9}","[^"]+","[A-Za-z0-9]{2}","[^"]+".?$`
	voyagePattern   = `^"\d{7}",(?:` + nonBlank + `,){3}"[A-Za-z]{2}[A-Za-z0-9]{3}","[0-9]{2}-[A-Za-z]{3}-[0-9]{4}".?$`
	sightingPattern = `^"[0-9]+-[A-Za-z]+-[0-9]+",` + nonBlank + `,"\d{7}",".*","(?i:true|false)".?$`
)

// ============================================================================
// Countries
// ============================================================================

var Countries = Kind[domain.Country, CountryRecord]{
	Key:   "countries",
	Label: "Country",
	Codec: NewCodec(countryPattern, parseCountry,
		Field[CountryRecord]{Name: "Code", Order: 1, Value: func(r CountryRecord) string { return r.Code }},
		Field[CountryRecord]{Name: "Name", Order: 2, Value: func(r CountryRecord) string { return r.Name }},
	),
	Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) (err error) {
		snap.Countries, err = loadIndex[domain.Country](ctx, s.Countries, func(c domain.Country) string { return c.Code })
		return err
	},
	Rules: []Rule[CountryRecord]{
		{Field: "Code", Value: countryCode, Valid: func(_ *Snapshot, r CountryRecord) bool {
			return ValidateAlpha(r.Code, 2, 2)
		}},
		{Field: "Code", Value: countryCode, Valid: func(snap *Snapshot, r CountryRecord) bool {
			_, exists := snap.Countries[r.Code]
			return !exists
		}},
	},
	Persist: func(ctx context.Context, s *store.Store, _ *Snapshot, r CountryRecord) error {
		_, err := s.Countries.Add(ctx, r.Code, r.Name)
		return err
	},
	List: func(ctx context.Context, s *store.Store) ([]domain.Country, error) {
		return listAll[domain.Country](ctx, s.Countries)
	},
	Flatten: func(c domain.Country) []CountryRecord {
		return []CountryRecord{{Code: c.Code, Name: c.Name}}
	},
}

func countryCode(r CountryRecord) string { return r.Code }

// ============================================================================
// Ports
// ============================================================================

var Ports = Kind[domain.Port, PortRecord]{
	Key:   "ports",
	Label: "Port",
	Codec: NewCodec(portPattern, parsePort,
		Field[PortRecord]{Name: "Code", Order: 1, Value: func(r PortRecord) string { return r.Code }},
		Field[PortRecord]{Name: "Name", Order: 2, Value: func(r PortRecord) string { return r.Name }},
	),
	Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) (err error) {
		if snap.Countries, err = loadIndex[domain.Country](ctx, s.Countries, func(c domain.Country) string { return c.Code }); err != nil {
			return err
		}
		snap.Ports, err = loadIndex[domain.Port](ctx, s.Ports, func(p domain.Port) string { return p.Code })
		return err
	},
	Rules: []Rule[PortRecord]{
		{Field: "Code", Value: portCode, Valid: func(snap *Snapshot, r PortRecord) bool {
			_, exists := snap.Ports[r.Code]
			return !exists
		}},
		{Field: "Code", Value: portCode, Valid: func(snap *Snapshot, r PortRecord) bool {
			_, exists := snap.Countries[r.Code[:2]]
			return exists
		}},
	},
	Persist: func(ctx context.Context, s *store.Store, snap *Snapshot, r PortRecord) error {
		country, ok := snap.Countries[r.Code[:2]]
		if !ok {
			return fmt.Errorf("country %q: %w", r.Code[:2], store.ErrNotFound)
		}
		_, err := s.Ports.Add(ctx, country.ID, r.Code, r.Name)
		return err
	},
	List: func(ctx context.Context, s *store.Store) ([]domain.Port, error) {
		return listAll[domain.Port](ctx, s.Ports)
	},
	Flatten: func(p domain.Port) []PortRecord {
		return []PortRecord{{Code: p.Code, Name: p.Name}}
	},
}

func portCode(r PortRecord) string { return r.Code }

// ============================================================================
// Operators, vessel types and locations
// ============================================================================

var Operators = namedKind("operators", "Operator", parseTitledName,
	func(s *store.Store) store.Repository[domain.Operator] { return s.Operators },
	func(snap *Snapshot) *map[string]domain.Operator { return &snap.Operators },
	func(o domain.Operator) string { return o.Name },
	func(ctx context.Context, s *store.Store, name string) error {
		_, err := s.Operators.Add(ctx, name)
		return err
	},
)

var VesselTypes = namedKind("vessel-types", "Vessel Type", parseTitledName,
	func(s *store.Store) store.Repository[domain.VesselType] { return s.VesselTypes },
	func(snap *Snapshot) *map[string]domain.VesselType { return &snap.VesselTypes },
	func(t domain.VesselType) string { return t.Name },
	func(ctx context.Context, s *store.Store, name string) error {
		_, err := s.VesselTypes.Add(ctx, name)
		return err
	},
)

var Locations = namedKind("locations", "Location", parseCleanName,
	func(s *store.Store) store.Repository[domain.Location] { return s.Locations },
	func(snap *Snapshot) *map[string]domain.Location { return &snap.Locations },
	func(l domain.Location) string { return l.Name },
	func(ctx context.Context, s *store.Store, name string) error {
		_, err := s.Locations.Add(ctx, name)
		return err
	},
)

// namedKind builds a kind whose only field is a unique Name. cache selects
// the snapshot map the kind fills and checks.
func namedKind[E any](
	key, label string,
	parse func([]string) (NamedRecord, error),
	repo func(*store.Store) store.Repository[E],
	cache func(*Snapshot) *map[string]E,
	name func(E) string,
	add func(ctx context.Context, s *store.Store, name string) error,
) Kind[E, NamedRecord] {
	return Kind[E, NamedRecord]{
		Key:   key,
		Label: label,
		Codec: NewCodec(namedPattern, parse,
			Field[NamedRecord]{Name: "Name", Order: 1, Value: recordName},
		),
		Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) error {
			m, err := loadIndex(ctx, repo(s), name)
			if err != nil {
				return err
			}
			*cache(snap) = m
			return nil
		},
		Rules: []Rule[NamedRecord]{
			{Field: "Name", Value: recordName, Valid: func(snap *Snapshot, r NamedRecord) bool {
				_, exists := (*cache(snap))[r.Name]
				return !exists
			}},
		},
		Persist: func(ctx context.Context, s *store.Store, _ *Snapshot, r NamedRecord) error {
			return add(ctx, s, r.Name)
		},
		List: func(ctx context.Context, s *store.Store) ([]E, error) {
			return listAll(ctx, repo(s))
		},
		Flatten: func(e E) []NamedRecord {
			return []NamedRecord{{Name: name(e)}}
		},
	}
}

func recordName(r NamedRecord) string { return r.Name }

// ============================================================================
// Vessels
// ============================================================================

var Vessels = Kind[domain.Vessel, VesselRecord]{
	Key:   "vessels",
	Label: "Vessel",
	Codec: NewCodec(vesselPattern, parseVessel,
		Field[VesselRecord]{Name: "IMO", Order: 1, Value: func(r VesselRecord) string { return r.Identifier }},
		Field[VesselRecord]{Name: "Year Built", Order: 2, Value: func(r VesselRecord) string { return formatInt(r.Built) }},
		Field[VesselRecord]{Name: "Draught", Order: 3, Value: func(r VesselRecord) string { return formatDecimal(r.Draught) }},
		Field[VesselRecord]{Name: "Length", Order: 4, Value: func(r VesselRecord) string { return formatInt(r.Length) }},
		Field[VesselRecord]{Name: "Beam", Order: 5, Value: func(r VesselRecord) string { return formatInt(r.Beam) }},
		Field[VesselRecord]{Name: "Tonnage", Order: 6, Value: func(r VesselRecord) string { return formatInt(r.Tonnage) }},
		Field[VesselRecord]{Name: "Passengers", Order: 7, Value: func(r VesselRecord) string { return formatInt(r.Passengers) }},
		Field[VesselRecord]{Name: "Crew", Order: 8, Value: func(r VesselRecord) string { return formatInt(r.Crew) }},
		Field[VesselRecord]{Name: "Decks", Order: 9, Value: func(r VesselRecord) string { return formatInt(r.Decks) }},
		Field[VesselRecord]{Name: "Cabins", Order: 10, Value: func(r VesselRecord) string { return formatInt(r.Cabins) }},
		Field[VesselRecord]{Name: "Name", Order: 11, Value: func(r VesselRecord) string { return r.Name }},
		Field[VesselRecord]{Name: "Callsign", Order: 12, Value: func(r VesselRecord) string { return r.Callsign }},
		Field[VesselRecord]{Name: "MMSI", Order: 13, Value: func(r VesselRecord) string { return r.MMSI }},
		Field[VesselRecord]{Name: "Type", Order: 14, Value: func(r VesselRecord) string { return r.VesselType }},
		Field[VesselRecord]{Name: "Flag", Order: 15, Value: func(r VesselRecord) string { return r.Flag }},
		Field[VesselRecord]{Name: "Operator", Order: 16, Value: func(r VesselRecord) string { return r.Operator }},
	),
	Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) (err error) {
		if snap.VesselTypes, err = loadIndex[domain.VesselType](ctx, s.VesselTypes, func(t domain.VesselType) string { return t.Name }); err != nil {
			return err
		}
		if snap.Countries, err = loadIndex[domain.Country](ctx, s.Countries, func(c domain.Country) string { return c.Code }); err != nil {
			return err
		}
		snap.Operators, err = loadIndex[domain.Operator](ctx, s.Operators, func(o domain.Operator) string { return o.Name })
		return err
	},
	Rules: []Rule[VesselRecord]{
		{Field: "Identifier", Value: func(r VesselRecord) string { return r.Identifier }, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateNumeric(r.Identifier, 7, 7)
		}},
		{Field: "MMSI", Value: func(r VesselRecord) string { return r.MMSI }, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateNumeric(r.MMSI, 9, 9)
		}},
		{Field: "Flag", Value: vesselFlag, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateAlpha(r.Flag, 2, 2)
		}},
		{Field: "VesselType", Value: func(r VesselRecord) string { return r.VesselType }, Valid: func(snap *Snapshot, r VesselRecord) bool {
			_, ok := snap.VesselTypes[r.VesselType]
			return ok
		}},
		{Field: "Flag", Value: vesselFlag, Valid: func(snap *Snapshot, r VesselRecord) bool {
			_, ok := snap.Countries[r.Flag]
			return ok
		}},
		{Field: "Operator", Value: func(r VesselRecord) string { return r.Operator }, Valid: func(snap *Snapshot, r VesselRecord) bool {
			_, ok := snap.Operators[r.Operator]
			return ok
		}},
		{Field: "Built", Value: func(r VesselRecord) string { return formatInt(r.Built) }, Valid: func(snap *Snapshot, r VesselRecord) bool {
			return ValidateIntRange(r.Built, 1900, snap.Now.Year(), true)
		}},
		{Field: "Draught", Value: func(r VesselRecord) string { return formatDecimal(r.Draught) }, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateDecimalRange(r.Draught, 1, math.MaxFloat64, true)
		}},
		{Field: "Length", Value: func(r VesselRecord) string { return formatInt(r.Length) }, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateIntRange(r.Length, 1, math.MaxInt, true)
		}},
		{Field: "Beam", Value: func(r VesselRecord) string { return formatInt(r.Beam) }, Valid: func(_ *Snapshot, r VesselRecord) bool {
			return ValidateIntRange(r.Beam, 1, math.MaxInt, true)
		}},
	},
	Persist: persistVessel,
	List: func(ctx context.Context, s *store.Store) ([]domain.Vessel, error) {
		return listAll[domain.Vessel](ctx, s.Vessels)
	},
	Flatten: flattenVessel,
}

func vesselFlag(r VesselRecord) string { return r.Flag }

// persistVessel updates an existing vessel or adds a new one, then appends
// a registration that becomes the active one.
func persistVessel(ctx context.Context, s *store.Store, snap *Snapshot, r VesselRecord) error {
	vesselType, ok := snap.VesselTypes[r.VesselType]
	if !ok {
		return fmt.Errorf("vessel type %q: %w", r.VesselType, store.ErrNotFound)
	}
	flag, ok := snap.Countries[r.Flag]
	if !ok {
		return fmt.Errorf("country %q: %w", r.Flag, store.ErrNotFound)
	}
	operator, ok := snap.Operators[r.Operator]
	if !ok {
		return fmt.Errorf("operator %q: %w", r.Operator, store.ErrNotFound)
	}

	v := domain.Vessel{
		Identifier: r.Identifier,
		IsIMO:      IsIMONumber(r.Identifier),
		Built:      r.Built,
		Draught:    r.Draught,
		Length:     r.Length,
		Beam:       r.Beam,
	}

	existing, err := s.Vessels.Get(ctx, func(x domain.Vessel) bool { return x.Identifier == r.Identifier })
	if err != nil {
		return err
	}
	if existing != nil {
		v.ID = existing.ID
		v, err = s.Vessels.Update(ctx, v)
	} else {
		v, err = s.Vessels.Add(ctx, v)
	}
	if err != nil {
		return err
	}

	_, err = s.Registrations.Add(ctx, domain.RegistrationHistory{
		VesselID:     v.ID,
		VesselTypeID: vesselType.ID,
		FlagID:       flag.ID,
		OperatorID:   operator.ID,
		Name:         r.Name,
		Callsign:     r.Callsign,
		MMSI:         r.MMSI,
		Tonnage:      r.Tonnage,
		Passengers:   r.Passengers,
		Crew:         r.Crew,
		Decks:        r.Decks,
		Cabins:       r.Cabins,
	})
	return err
}

func flattenVessel(v domain.Vessel) []VesselRecord {
	r := VesselRecord{
		Identifier: v.Identifier,
		Built:      v.Built,
		Draught:    v.Draught,
		Length:     v.Length,
		Beam:       v.Beam,
	}
	if reg := v.ActiveRegistration(); reg != nil {
		r.Tonnage = reg.Tonnage
		r.Passengers = reg.Passengers
		r.Crew = reg.Crew
		r.Decks = reg.Decks
		r.Cabins = reg.Cabins
		r.Name = reg.Name
		r.Callsign = reg.Callsign
		r.MMSI = reg.MMSI
		if reg.VesselType != nil {
			r.VesselType = reg.VesselType.Name
		}
		if reg.Flag != nil {
			r.Flag = reg.Flag.Code
		}
		if reg.Operator != nil {
			r.Operator = reg.Operator.Name
		}
	}
	return []VesselRecord{r}
}

// ============================================================================
// Voyages
// ============================================================================

var Voyages = Kind[domain.Voyage, VoyageRecord]{
	Key:   "voyages",
	Label: "Voyage",
	Codec: NewCodec(voyagePattern, parseVoyage,
		Field[VoyageRecord]{Name: "Identifier", Order: 1, Value: func(r VoyageRecord) string { return r.Identifier }},
		Field[VoyageRecord]{Name: "Operator", Order: 2, Value: func(r VoyageRecord) string { return r.Operator }},
		Field[VoyageRecord]{Name: "Number", Order: 3, Value: func(r VoyageRecord) string { return r.Number }},
		Field[VoyageRecord]{Name: "Event Type", Order: 4, Value: func(r VoyageRecord) string { return r.EventType }},
		Field[VoyageRecord]{Name: "Port", Order: 5, Value: func(r VoyageRecord) string { return r.Port }},
		Field[VoyageRecord]{Name: "Date", Order: 6, Value: func(r VoyageRecord) string { return r.Date }},
	),
	Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) (err error) {
		if snap.Operators, err = loadIndex[domain.Operator](ctx, s.Operators, func(o domain.Operator) string { return o.Name }); err != nil {
			return err
		}
		if snap.Ports, err = loadIndex[domain.Port](ctx, s.Ports, func(p domain.Port) string { return p.Code }); err != nil {
			return err
		}
		snap.Vessels, err = loadIndex[domain.Vessel](ctx, s.Vessels, func(v domain.Vessel) string { return v.Identifier })
		return err
	},
	Rules: []Rule[VoyageRecord]{
		{Field: "Identifier", Value: func(r VoyageRecord) string { return r.Identifier }, Valid: func(snap *Snapshot, r VoyageRecord) bool {
			_, ok := snap.Vessels[r.Identifier]
			return ok
		}},
		{Field: "Operator", Value: func(r VoyageRecord) string { return r.Operator }, Valid: func(snap *Snapshot, r VoyageRecord) bool {
			_, ok := snap.Operators[r.Operator]
			return ok
		}},
		{Field: "Port", Value: func(r VoyageRecord) string { return r.Port }, Valid: func(snap *Snapshot, r VoyageRecord) bool {
			_, ok := snap.Ports[r.Port]
			return ok
		}},
		{Field: "EventType", Value: func(r VoyageRecord) string { return r.EventType }, Valid: func(_ *Snapshot, r VoyageRecord) bool {
			_, err := domain.ParseVoyageEventType(r.EventType)
			return err == nil
		}},
		{Field: "Date", Value: func(r VoyageRecord) string { return r.Date }, Valid: func(_ *Snapshot, r VoyageRecord) bool {
			_, err := time.Parse(DateFormat, r.Date)
			return err == nil
		}},
	},
	Persist: persistVoyage,
	List: func(ctx context.Context, s *store.Store) ([]domain.Voyage, error) {
		return listAll[domain.Voyage](ctx, s.Voyages)
	},
	Flatten: flattenVoyage,
}

// persistVoyage finds or creates the voyage by (operator, number) and
// appends the event.
func persistVoyage(ctx context.Context, s *store.Store, snap *Snapshot, r VoyageRecord) error {
	operator, ok := snap.Operators[r.Operator]
	if !ok {
		return fmt.Errorf("operator %q: %w", r.Operator, store.ErrNotFound)
	}
	vessel, ok := snap.Vessels[r.Identifier]
	if !ok {
		return fmt.Errorf("vessel %q: %w", r.Identifier, store.ErrNotFound)
	}
	port, ok := snap.Ports[r.Port]
	if !ok {
		return fmt.Errorf("port %q: %w", r.Port, store.ErrNotFound)
	}
	eventType, err := domain.ParseVoyageEventType(r.EventType)
	if err != nil {
		return err
	}
	date, err := parseDate("Date", r.Date)
	if err != nil {
		return err
	}

	voyage, err := s.Voyages.Get(ctx, func(v domain.Voyage) bool {
		return v.OperatorID == operator.ID && v.Number == r.Number
	})
	if err != nil {
		return err
	}
	if voyage == nil {
		created, err := s.Voyages.Add(ctx, operator.ID, vessel.ID, r.Number)
		if err != nil {
			return err
		}
		voyage = &created
	}

	_, err = s.VoyageEvents.Add(ctx, voyage.ID, port.ID, eventType, date)
	return err
}

// flattenVoyage yields one record per event. A voyage without events
// yields nothing.
func flattenVoyage(v domain.Voyage) []VoyageRecord {
	var identifier, operator string
	if v.Vessel != nil {
		identifier = v.Vessel.Identifier
	}
	if v.Operator != nil {
		operator = v.Operator.Name
	}

	records := make([]VoyageRecord, 0, len(v.Events))
	for _, e := range v.Events {
		r := VoyageRecord{
			Identifier: identifier,
			Operator:   operator,
			Number:     v.Number,
			EventType:  e.EventType.String(),
			Date:       formatDate(e.Date),
		}
		if e.Port != nil {
			r.Port = e.Port.Code
		}
		records = append(records, r)
	}
	return records
}

// ============================================================================
// Sightings
// ============================================================================

var Sightings = Kind[domain.Sighting, SightingRecord]{
	Key:   "sightings",
	Label: "Sighting",
	Codec: NewCodec(sightingPattern, parseSighting,
		Field[SightingRecord]{Name: "Date", Order: 1, Value: func(r SightingRecord) string { return formatDate(r.Date) }},
		Field[SightingRecord]{Name: "Location", Order: 2, Value: func(r SightingRecord) string { return r.Location }},
		Field[SightingRecord]{Name: "Identifier", Order: 3, Value: func(r SightingRecord) string { return r.Identifier }},
		Field[SightingRecord]{Name: "Voyage", Order: 4, Value: func(r SightingRecord) string { return r.VoyageNumber }},
		Field[SightingRecord]{Name: "My Voyage", Order: 5, Value: func(r SightingRecord) string { return formatBool(r.IsMyVoyage) }},
	),
	Prepare: func(ctx context.Context, s *store.Store, snap *Snapshot) (err error) {
		if snap.Locations, err = loadIndex[domain.Location](ctx, s.Locations, func(l domain.Location) string { return l.Name }); err != nil {
			return err
		}
		if snap.Vessels, err = loadIndex[domain.Vessel](ctx, s.Vessels, func(v domain.Vessel) string { return v.Identifier }); err != nil {
			return err
		}
		snap.Voyages, err = loadIndex[domain.Voyage](ctx, s.Voyages, func(v domain.Voyage) string { return v.Number })
		return err
	},
	Rules: []Rule[SightingRecord]{
		{Field: "Date", Value: func(r SightingRecord) string { return formatDate(r.Date) }, Valid: func(snap *Snapshot, r SightingRecord) bool {
			return !sightingDay(r.Date, snap.Now.Location()).After(snap.Now)
		}},
		{Field: "Location", Value: func(r SightingRecord) string { return r.Location }, Valid: func(snap *Snapshot, r SightingRecord) bool {
			_, ok := snap.Locations[r.Location]
			return ok
		}},
		{Field: "Identifier", Value: func(r SightingRecord) string { return r.Identifier }, Valid: func(snap *Snapshot, r SightingRecord) bool {
			_, ok := snap.Vessels[r.Identifier]
			return ok
		}},
		{Field: "Voyage", Value: func(r SightingRecord) string { return r.VoyageNumber }, Valid: func(snap *Snapshot, r SightingRecord) bool {
			if r.VoyageNumber == "" {
				return true
			}
			_, ok := snap.Voyages[r.VoyageNumber]
			return ok
		}},
	},
	Persist: persistSighting,
	List: func(ctx context.Context, s *store.Store) ([]domain.Sighting, error) {
		return listAll[domain.Sighting](ctx, s.Sightings)
	},
	Flatten: flattenSighting,
}

// sightingDay returns the start of the calendar day of d in loc.
func sightingDay(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func persistSighting(ctx context.Context, s *store.Store, snap *Snapshot, r SightingRecord) error {
	location, ok := snap.Locations[r.Location]
	if !ok {
		return fmt.Errorf("location %q: %w", r.Location, store.ErrNotFound)
	}
	vessel, ok := snap.Vessels[r.Identifier]
	if !ok {
		return fmt.Errorf("vessel %q: %w", r.Identifier, store.ErrNotFound)
	}

	sighting := domain.Sighting{
		LocationID: location.ID,
		VesselID:   vessel.ID,
		Date:       r.Date,
		IsMyVoyage: r.IsMyVoyage,
	}
	if r.VoyageNumber != "" {
		voyage, ok := snap.Voyages[r.VoyageNumber]
		if !ok {
			return fmt.Errorf("voyage %q: %w", r.VoyageNumber, store.ErrNotFound)
		}
		sighting.VoyageID = &voyage.ID
	}

	_, err := s.Sightings.Add(ctx, sighting)
	return err
}

func flattenSighting(s domain.Sighting) []SightingRecord {
	r := SightingRecord{Date: s.Date, IsMyVoyage: s.IsMyVoyage}
	if s.Location != nil {
		r.Location = s.Location.Name
	}
	if s.Vessel != nil {
		r.Identifier = s.Vessel.Identifier
	}
	if s.Voyage != nil {
		r.VoyageNumber = s.Voyage.Number
	}
	return []SightingRecord{r}
}
