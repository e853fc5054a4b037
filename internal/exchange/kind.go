package exchange

import (
	"context"
	"time"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
)

// Phase is the importer's position in the two-pass protocol.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhasePreparing  Phase = "preparing"
	PhaseValidating Phase = "validating"
	PhasePersisting Phase = "persisting"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Snapshot holds the reference data loaded once at the start of an import.
// It reflects the store before the import and is never refreshed during
// the run. Maps are keyed by natural key; a kind's Prepare fills only the
// maps it needs.
type Snapshot struct {
	Now         time.Time
	Countries   map[string]domain.Country    // by code
	Ports       map[string]domain.Port       // by code
	Operators   map[string]domain.Operator   // by name
	VesselTypes map[string]domain.VesselType // by name
	Locations   map[string]domain.Location   // by name
	Vessels     map[string]domain.Vessel     // by identifier
	Voyages     map[string]domain.Voyage     // by number, first id wins
}

// Rule is one field check run during validation. Value supplies the text
// reported when Valid fails.
type Rule[R any] struct {
	Field string
	Value func(R) string
	Valid func(snap *Snapshot, r R) bool
}

// Kind bundles everything the generic importer and exporter need for one
// entity kind. E is the domain entity, R the flat record.
type Kind[E, R any] struct {
	Key   string
	Label string
	Codec Codec[R]

	// Prepare loads reference data into snap. Optional.
	Prepare func(ctx context.Context, s *store.Store, snap *Snapshot) error

	// Rules run in order; the first failure aborts the import.
	Rules []Rule[R]

	// Persist resolves natural keys through snap and writes the record.
	Persist func(ctx context.Context, s *store.Store, snap *Snapshot, r R) error

	// List loads every entity for export.
	List func(ctx context.Context, s *store.Store) ([]E, error)

	// Flatten projects one entity into one or more flat records.
	Flatten func(e E) []R
}

// loadIndex lists every entity in repo and indexes it by key. The first
// entity wins when keys collide.
func loadIndex[T any](ctx context.Context, repo store.Repository[T], key func(T) string) (map[string]T, error) {
	items, err := repo.List(ctx, store.All[T], 1, store.AllRows)
	if err != nil {
		return nil, err
	}
	m := make(map[string]T, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := m[k]; !ok {
			m[k] = item
		}
	}
	return m, nil
}

func listAll[T any](ctx context.Context, repo store.Repository[T]) ([]T, error) {
	return repo.List(ctx, store.All[T], 1, store.AllRows)
}
