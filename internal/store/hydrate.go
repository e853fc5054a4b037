package store

import (
	"sort"

	"github.com/JonMunkholm/shiprec/internal/domain"
)

// Rows is an unhydrated view of stored rows. Backends fill in the tables
// a hydration step needs and leave the rest nil.
type Rows struct {
	Countries     []domain.Country
	Operators     []domain.Operator
	VesselTypes   []domain.VesselType
	Locations     []domain.Location
	Ports         []domain.Port
	Vessels       []domain.Vessel
	Registrations []domain.RegistrationHistory
	Voyages       []domain.Voyage
	VoyageEvents  []domain.VoyageEvent
}

// Linker resolves relations between rows by id.
type Linker struct {
	countries   map[int64]domain.Country
	operators   map[int64]domain.Operator
	vesselTypes map[int64]domain.VesselType
	locations   map[int64]domain.Location
	ports       map[int64]domain.Port
	vessels     map[int64]domain.Vessel
	voyages     map[int64]domain.Voyage

	history map[int64][]domain.RegistrationHistory
	events  map[int64][]domain.VoyageEvent
}

// NewLinker indexes rows. Relations are linked one level deep plus the
// nesting needed for exports: vessel -> history -> type/flag/operator and
// voyage -> events -> port -> country.
func NewLinker(rows Rows) *Linker {
	l := &Linker{
		countries:   indexBy(rows.Countries, func(c domain.Country) int64 { return c.ID }),
		operators:   indexBy(rows.Operators, func(o domain.Operator) int64 { return o.ID }),
		vesselTypes: indexBy(rows.VesselTypes, func(t domain.VesselType) int64 { return t.ID }),
		locations:   indexBy(rows.Locations, func(loc domain.Location) int64 { return loc.ID }),
		history:     make(map[int64][]domain.RegistrationHistory),
		events:      make(map[int64][]domain.VoyageEvent),
	}

	l.ports = make(map[int64]domain.Port, len(rows.Ports))
	for _, p := range rows.Ports {
		l.ports[p.ID] = l.Port(p)
	}

	for _, h := range rows.Registrations {
		l.history[h.VesselID] = append(l.history[h.VesselID], l.Registration(h))
	}
	for id := range l.history {
		sortByID(l.history[id], func(h domain.RegistrationHistory) int64 { return h.ID })
	}

	l.vessels = make(map[int64]domain.Vessel, len(rows.Vessels))
	for _, v := range rows.Vessels {
		l.vessels[v.ID] = l.Vessel(v)
	}

	for _, e := range rows.VoyageEvents {
		l.events[e.VoyageID] = append(l.events[e.VoyageID], l.Event(e))
	}
	for id := range l.events {
		sortByID(l.events[id], func(e domain.VoyageEvent) int64 { return e.ID })
	}

	l.voyages = make(map[int64]domain.Voyage, len(rows.Voyages))
	for _, v := range rows.Voyages {
		l.voyages[v.ID] = l.Voyage(v)
	}

	return l
}

func (l *Linker) Port(p domain.Port) domain.Port {
	if c, ok := l.countries[p.CountryID]; ok {
		p.Country = &c
	}
	return p
}

func (l *Linker) Registration(h domain.RegistrationHistory) domain.RegistrationHistory {
	if t, ok := l.vesselTypes[h.VesselTypeID]; ok {
		h.VesselType = &t
	}
	if c, ok := l.countries[h.FlagID]; ok {
		h.Flag = &c
	}
	if o, ok := l.operators[h.OperatorID]; ok {
		h.Operator = &o
	}
	return h
}

func (l *Linker) Vessel(v domain.Vessel) domain.Vessel {
	v.RegistrationHistory = append([]domain.RegistrationHistory(nil), l.history[v.ID]...)
	return v
}

func (l *Linker) Event(e domain.VoyageEvent) domain.VoyageEvent {
	if p, ok := l.ports[e.PortID]; ok {
		e.Port = &p
	}
	return e
}

func (l *Linker) Voyage(v domain.Voyage) domain.Voyage {
	if o, ok := l.operators[v.OperatorID]; ok {
		v.Operator = &o
	}
	if vessel, ok := l.vessels[v.VesselID]; ok {
		v.Vessel = &vessel
	}
	v.Events = append([]domain.VoyageEvent(nil), l.events[v.ID]...)
	return v
}

func (l *Linker) Sighting(s domain.Sighting) domain.Sighting {
	if loc, ok := l.locations[s.LocationID]; ok {
		s.Location = &loc
	}
	if v, ok := l.vessels[s.VesselID]; ok {
		s.Vessel = &v
	}
	if s.VoyageID != nil {
		if v, ok := l.voyages[*s.VoyageID]; ok {
			s.Voyage = &v
		}
	}
	return s
}

// LinkAll applies link to every item.
func LinkAll[T any](items []T, link func(T) T) []T {
	result := make([]T, len(items))
	for i, item := range items {
		result[i] = link(item)
	}
	return result
}

func indexBy[T any](items []T, id func(T) int64) map[int64]T {
	m := make(map[int64]T, len(items))
	for _, item := range items {
		m[id(item)] = item
	}
	return m
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
