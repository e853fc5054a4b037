package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/store"
)

// Observer receives progress from a running import or export.
type Observer struct {
	Logger   *slog.Logger
	Now      func() time.Time
	OnPhase  func(exchange.Phase)
	OnRecord func(count int)
}

// ImportFunc imports lines, header first, into s.
type ImportFunc func(ctx context.Context, s *store.Store, lines []string, obs Observer) error

// ExportFunc writes every entity of a kind to w.
type ExportFunc func(ctx context.Context, s *store.Store, w io.Writer, obs Observer) error

// ExportFileFunc writes every entity of a kind to the file at path.
type ExportFileFunc func(ctx context.Context, s *store.Store, path string, obs Observer) error

// Kind is a registered entity kind with type-erased import and export.
type Kind struct {
	Key        string
	Label      string
	Order      int // reference data before the kinds that depend on it
	Columns    []string
	Import     ImportFunc
	Export     ExportFunc
	ExportFile ExportFileFunc
}

var (
	registry   = make(map[string]Kind)
	registryMu sync.RWMutex
)

// Register adds a kind to the registry.
// Panics if a kind with the same key is already registered.
func Register(k Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[k.Key]; exists {
		panic(fmt.Sprintf("kind already registered: %s", k.Key))
	}
	registry[k.Key] = k
}

// Get returns a kind by key.
func Get(key string) (Kind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	k, ok := registry[key]
	return k, ok
}

// All returns every registered kind in import order.
func All() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Kind, 0, len(registry))
	for _, k := range registry {
		result = append(result, k)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// Keys returns the registered keys in import order.
func Keys() []string {
	kinds := All()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = k.Key
	}
	return keys
}

// KindCount returns the number of registered kinds.
func KindCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered kinds.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Kind)
}

// Adapt wraps an exchange kind so the service can run it without knowing
// its entity and record types.
func Adapt[E, R any](k exchange.Kind[E, R], order int) Kind {
	fields := k.Codec.Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	return Kind{
		Key:     k.Key,
		Label:   k.Label,
		Order:   order,
		Columns: columns,
		Import: func(ctx context.Context, s *store.Store, lines []string, obs Observer) error {
			im := exchange.NewImporter(s, k, obs.Logger)
			if obs.Now != nil {
				im.Now = obs.Now
			}
			im.OnPhase = obs.OnPhase
			if obs.OnRecord != nil {
				im.OnImported = func(count int, _ R) { obs.OnRecord(count) }
			}
			return im.Import(ctx, lines)
		},
		Export: func(ctx context.Context, s *store.Store, w io.Writer, obs Observer) error {
			return newExporter(s, k, obs).WriteTo(ctx, w)
		},
		ExportFile: func(ctx context.Context, s *store.Store, path string, obs Observer) error {
			return newExporter(s, k, obs).Export(ctx, path)
		},
	}
}

func newExporter[E, R any](s *store.Store, k exchange.Kind[E, R], obs Observer) *exchange.Exporter[E, R] {
	ex := exchange.NewExporter(s, k)
	if obs.OnRecord != nil {
		ex.OnExported = func(count int, _ R) { obs.OnRecord(count) }
	}
	return ex
}
