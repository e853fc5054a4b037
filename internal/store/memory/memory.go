// Package memory is an in-process store backend. It enforces the same
// natural-key uniqueness as the SQL schema and is safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
)

type db struct {
	mu     sync.RWMutex
	rows   store.Rows
	sights []domain.Sighting
	jobs   []domain.JobStatus
	nextID int64
	now    func() time.Time
}

func (d *db) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *db) linker() *store.Linker {
	return store.NewLinker(d.rows)
}

// New returns an empty in-memory store.
func New() *store.Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty store that stamps registration and job
// times with now.
func NewWithClock(now func() time.Time) *store.Store {
	d := &db{now: now}

	s := store.NewStore("memory", nil)
	s.Countries = &countries{table[domain.Country]{d: d,
		rows: func(d *db) *[]domain.Country { return &d.rows.Countries },
		id:   func(c domain.Country) int64 { return c.ID },
	}}
	s.Ports = &ports{table[domain.Port]{d: d,
		rows: func(d *db) *[]domain.Port { return &d.rows.Ports },
		id:   func(p domain.Port) int64 { return p.ID },
		link: func(l *store.Linker, p domain.Port) domain.Port { return l.Port(p) },
	}}
	s.Operators = &operators{table[domain.Operator]{d: d,
		rows: func(d *db) *[]domain.Operator { return &d.rows.Operators },
		id:   func(o domain.Operator) int64 { return o.ID },
	}}
	s.VesselTypes = &vesselTypes{table[domain.VesselType]{d: d,
		rows: func(d *db) *[]domain.VesselType { return &d.rows.VesselTypes },
		id:   func(t domain.VesselType) int64 { return t.ID },
	}}
	s.Locations = &locations{table[domain.Location]{d: d,
		rows: func(d *db) *[]domain.Location { return &d.rows.Locations },
		id:   func(l domain.Location) int64 { return l.ID },
	}}
	s.Vessels = &vessels{table[domain.Vessel]{d: d,
		rows: func(d *db) *[]domain.Vessel { return &d.rows.Vessels },
		id:   func(v domain.Vessel) int64 { return v.ID },
		link: func(l *store.Linker, v domain.Vessel) domain.Vessel { return l.Vessel(v) },
	}}
	s.Registrations = &registrations{table[domain.RegistrationHistory]{d: d,
		rows: func(d *db) *[]domain.RegistrationHistory { return &d.rows.Registrations },
		id:   func(h domain.RegistrationHistory) int64 { return h.ID },
		link: func(l *store.Linker, h domain.RegistrationHistory) domain.RegistrationHistory { return l.Registration(h) },
	}}
	s.Voyages = &voyages{table[domain.Voyage]{d: d,
		rows: func(d *db) *[]domain.Voyage { return &d.rows.Voyages },
		id:   func(v domain.Voyage) int64 { return v.ID },
		link: func(l *store.Linker, v domain.Voyage) domain.Voyage { return l.Voyage(v) },
	}}
	s.VoyageEvents = &voyageEvents{table[domain.VoyageEvent]{d: d,
		rows: func(d *db) *[]domain.VoyageEvent { return &d.rows.VoyageEvents },
		id:   func(e domain.VoyageEvent) int64 { return e.ID },
		link: func(l *store.Linker, e domain.VoyageEvent) domain.VoyageEvent { return l.Event(e) },
	}}
	s.Sightings = &sightings{table[domain.Sighting]{d: d,
		rows: func(d *db) *[]domain.Sighting { return &d.sights },
		id:   func(s domain.Sighting) int64 { return s.ID },
		link: func(l *store.Linker, s domain.Sighting) domain.Sighting { return l.Sighting(s) },
	}}
	s.JobStatuses = &jobStatuses{table[domain.JobStatus]{d: d,
		rows: func(d *db) *[]domain.JobStatus { return &d.jobs },
		id:   func(j domain.JobStatus) int64 { return j.ID },
	}}
	return s
}

// table implements the shared Repository methods over one slice of rows.
type table[T any] struct {
	d    *db
	rows func(*db) *[]T
	id   func(T) int64
	link func(*store.Linker, T) T
}

func (t *table[T]) snapshot() []T {
	items := append([]T(nil), *t.rows(t.d)...)
	if t.link != nil {
		l := t.d.linker()
		for i := range items {
			items[i] = t.link(l, items[i])
		}
	}
	return items
}

func (t *table[T]) Get(ctx context.Context, where store.Predicate[T]) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.d.mu.RLock()
	defer t.d.mu.RUnlock()

	return store.First(t.snapshot(), where), nil
}

func (t *table[T]) List(ctx context.Context, where store.Predicate[T], page, size int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.d.mu.RLock()
	defer t.d.mu.RUnlock()

	return store.Page(t.snapshot(), where, page, size), nil
}

func (t *table[T]) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.d.mu.Lock()
	defer t.d.mu.Unlock()

	rows := t.rows(t.d)
	for i, item := range *rows {
		if t.id(item) == id {
			*rows = append((*rows)[:i], (*rows)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete id %d: %w", id, store.ErrNotFound)
}

// exists reports whether any stored row matches. Caller holds the lock.
func (t *table[T]) exists(match func(T) bool) bool {
	for _, item := range *t.rows(t.d) {
		if match(item) {
			return true
		}
	}
	return false
}

func (t *table[T]) insert(item T) {
	rows := t.rows(t.d)
	*rows = append(*rows, item)
}

func (t *table[T]) replace(id int64, item T) bool {
	rows := t.rows(t.d)
	for i := range *rows {
		if t.id((*rows)[i]) == id {
			(*rows)[i] = item
			return true
		}
	}
	return false
}

func duplicate(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, store.ErrDuplicate)
}
