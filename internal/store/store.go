// Package store defines the storage-access capability used by the
// exchange core and the job service. Backends live in sub-packages.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/JonMunkholm/shiprec/internal/domain"
)

var (
	// ErrDuplicate is returned when an insert would violate a natural-key
	// uniqueness constraint.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrNotFound is returned by Update and Delete for unknown ids.
	ErrNotFound = errors.New("entity not found")
)

// AllRows is the page size that returns every match on page 1.
const AllRows = math.MaxInt

// Predicate selects entities. Predicates see hydrated entities, so they may
// inspect relations (for example a port's country code).
type Predicate[T any] func(T) bool

// All matches every entity.
func All[T any](T) bool { return true }

// Repository is the access surface shared by every entity kind.
type Repository[T any] interface {
	// Get returns the first match or nil when nothing matches.
	Get(ctx context.Context, where Predicate[T]) (*T, error)

	// List returns matches in id order. Pages are 1-based.
	List(ctx context.Context, where Predicate[T], page, size int) ([]T, error)

	Delete(ctx context.Context, id int64) error
}

type Countries interface {
	Repository[domain.Country]
	Add(ctx context.Context, code, name string) (domain.Country, error)
}

type Ports interface {
	Repository[domain.Port]
	Add(ctx context.Context, countryID int64, code, name string) (domain.Port, error)
}

type Operators interface {
	Repository[domain.Operator]
	Add(ctx context.Context, name string) (domain.Operator, error)
}

type VesselTypes interface {
	Repository[domain.VesselType]
	Add(ctx context.Context, name string) (domain.VesselType, error)
}

type Locations interface {
	Repository[domain.Location]
	Add(ctx context.Context, name string) (domain.Location, error)
}

// Vessels stores the physical attributes of a vessel. Add and Update ignore
// the registration history; use Registrations for that.
type Vessels interface {
	Repository[domain.Vessel]
	Add(ctx context.Context, v domain.Vessel) (domain.Vessel, error)
	Update(ctx context.Context, v domain.Vessel) (domain.Vessel, error)
}

// Registrations appends vessel registration history. Add makes the new row
// the vessel's only active registration.
type Registrations interface {
	Repository[domain.RegistrationHistory]
	Add(ctx context.Context, h domain.RegistrationHistory) (domain.RegistrationHistory, error)
}

type Voyages interface {
	Repository[domain.Voyage]
	Add(ctx context.Context, operatorID, vesselID int64, number string) (domain.Voyage, error)
}

type VoyageEvents interface {
	Repository[domain.VoyageEvent]
	Add(ctx context.Context, voyageID, portID int64, eventType domain.VoyageEventType, date time.Time) (domain.VoyageEvent, error)
}

type Sightings interface {
	Repository[domain.Sighting]
	Add(ctx context.Context, s domain.Sighting) (domain.Sighting, error)
}

// JobStatuses tracks background job runs. Update stamps the end time and
// records the error message, empty on success.
type JobStatuses interface {
	Repository[domain.JobStatus]
	Add(ctx context.Context, name, parameters string) (domain.JobStatus, error)
	Update(ctx context.Context, id int64, errorMessage string) (domain.JobStatus, error)
}

// Store groups the repositories of one backend.
type Store struct {
	Countries     Countries
	Ports         Ports
	Operators     Operators
	VesselTypes   VesselTypes
	Locations     Locations
	Vessels       Vessels
	Registrations Registrations
	Voyages       Voyages
	VoyageEvents  VoyageEvents
	Sightings     Sightings
	JobStatuses   JobStatuses

	// Driver names the backend, e.g. "memory", "sqlite", "postgres".
	Driver string

	closer func() error
}

// NewStore is used by backends to assemble a Store.
func NewStore(driver string, closer func() error) *Store {
	return &Store{Driver: driver, closer: closer}
}

// Close releases backend resources.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Page filters items and returns the requested 1-based page.
func Page[T any](items []T, where Predicate[T], page, size int) []T {
	if where == nil {
		where = All[T]
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return []T{}
	}

	skip := 0
	if page > 1 {
		// guard against overflow for huge page sizes
		if size > (math.MaxInt / (page - 1)) {
			return []T{}
		}
		skip = (page - 1) * size
	}

	result := make([]T, 0)
	for _, item := range items {
		if !where(item) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		result = append(result, item)
		if len(result) == size {
			break
		}
	}
	return result
}

// First returns the first item matching where, or nil.
func First[T any](items []T, where Predicate[T]) *T {
	matches := Page(items, where, 1, 1)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}
