package exchange

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/shiprec/internal/store"
)

// Exporter flattens entities of one kind and writes them as a file.
type Exporter[E, R any] struct {
	store *store.Store
	kind  Kind[E, R]

	// OnExported is called after each line is written with the 1-based
	// record count.
	OnExported func(count int, record R)
}

func NewExporter[E, R any](s *store.Store, kind Kind[E, R]) *Exporter[E, R] {
	return &Exporter[E, R]{store: s, kind: kind}
}

// Export loads every entity of the kind and writes them to path.
func (ex *Exporter[E, R]) Export(ctx context.Context, path string) error {
	entities, err := ex.kind.List(ctx, ex.store)
	if err != nil {
		return fmt.Errorf("list %s: %w", ex.kind.Key, err)
	}
	return ex.ExportEntities(ctx, entities, path)
}

// ExportEntities writes the given entities to path without touching the
// store.
func (ex *Exporter[E, R]) ExportEntities(ctx context.Context, entities []E, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ex.writer().Export(ex.Flatten(entities), path)
}

// WriteTo loads every entity of the kind and streams the file to w.
func (ex *Exporter[E, R]) WriteTo(ctx context.Context, w io.Writer) error {
	entities, err := ex.kind.List(ctx, ex.store)
	if err != nil {
		return fmt.Errorf("list %s: %w", ex.kind.Key, err)
	}
	return ex.writer().Write(w, ex.Flatten(entities))
}

// Flatten projects entities into flat records. One entity may yield
// several records.
func (ex *Exporter[E, R]) Flatten(entities []E) []R {
	records := make([]R, 0, len(entities))
	for _, e := range entities {
		records = append(records, ex.kind.Flatten(e)...)
	}
	return records
}

func (ex *Exporter[E, R]) writer() *LineWriter[R] {
	w := NewLineWriter(ex.kind.Codec)
	w.OnExported = ex.OnExported
	return w
}
