package exchange

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/shiprec/internal/store"
)

// Importer runs the two-pass import protocol for one kind:
//
//  1. Prepare loads a reference snapshot from the store.
//  2. Pass 1 checks every data line's shape, inflates it and runs the
//     kind's rules. The first failure aborts the run with nothing written.
//  3. Pass 2 inflates every line again and persists it, firing OnImported
//     per record. A failure here is not rolled back.
//
// Line 0 is always the header. Record numbers are 1-based and count the
// header, so the first data line is record 2.
//
// An Importer is not safe for concurrent use, and two imports of the same
// kind must not run against the same store at once.
type Importer[E, R any] struct {
	store  *store.Store
	kind   Kind[E, R]
	logger *slog.Logger
	phase  Phase

	// Now supplies the snapshot clock. Defaults to time.Now.
	Now func() time.Time

	// OnImported is called after each record is persisted with the count
	// of data records so far (header excluded).
	OnImported func(count int, record R)

	// OnPhase observes every phase transition.
	OnPhase func(Phase)
}

// NewImporter returns an importer for kind. A nil logger discards output.
func NewImporter[E, R any](s *store.Store, kind Kind[E, R], logger *slog.Logger) *Importer[E, R] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer[E, R]{
		store:  s,
		kind:   kind,
		logger: logger.With("kind", kind.Key),
		phase:  PhaseNotStarted,
		Now:    time.Now,
	}
}

// Phase returns the current phase.
func (im *Importer[E, R]) Phase() Phase {
	return im.phase
}

func (im *Importer[E, R]) setPhase(p Phase) {
	im.phase = p
	if im.OnPhase != nil {
		im.OnPhase(p)
	}
}

// ImportFile reads the file at path and imports its lines.
func (im *Importer[E, R]) ImportFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return im.Import(ctx, lines)
}

// Import runs both passes over lines.
func (im *Importer[E, R]) Import(ctx context.Context, lines []string) (err error) {
	defer func() {
		if err != nil {
			im.setPhase(PhaseFailed)
		}
	}()

	im.setPhase(PhasePreparing)
	snap := &Snapshot{Now: im.Now()}
	if im.kind.Prepare != nil {
		if err := im.kind.Prepare(ctx, im.store, snap); err != nil {
			return fmt.Errorf("prepare %s import: %w", im.kind.Key, err)
		}
	}

	im.setPhase(PhaseValidating)
	for i := 1; i < len(lines); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := im.validate(snap, lines[i], i+1); err != nil {
			return err
		}
	}

	im.setPhase(PhasePersisting)
	for i := 1; i < len(lines); i++ {
		record := i + 1
		r, err := im.inflate(lines[i], record)
		if err != nil {
			return err
		}
		if err := im.kind.Persist(ctx, im.store, snap, r); err != nil {
			im.logger.Error("persist failed", "record", record, "error", err)
			return fmt.Errorf("persist record %d: %w", record, err)
		}
		if im.OnImported != nil {
			im.OnImported(record-1, r)
		}
	}

	im.setPhase(PhaseDone)
	return nil
}

func (im *Importer[E, R]) validate(snap *Snapshot, line string, record int) (R, error) {
	var zero R

	if !im.kind.Codec.Matches(line) {
		return zero, &FormatError{Record: record}
	}

	r, err := im.inflate(line, record)
	if err != nil {
		return zero, err
	}

	for _, rule := range im.kind.Rules {
		if !rule.Valid(snap, r) {
			return zero, &FieldError{Field: rule.Field, Record: record, Value: rule.Value(r)}
		}
	}
	return r, nil
}

func (im *Importer[E, R]) inflate(line string, record int) (R, error) {
	im.logger.Debug("inflating record", "record", record, "line", line)

	r, err := im.kind.Codec.Inflate(line)
	if err != nil {
		var inflErr *InflationError
		if errors.As(err, &inflErr) {
			inflErr.Record = record
		}
		im.logger.Error("inflate failed", "record", record, "line", line, "error", err)
		return r, err
	}
	return r, nil
}

// ReadLines splits r into lines without their terminators. A leading UTF-8
// byte order mark is dropped and invalid UTF-8 becomes U+FFFD.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	r = transform.NewReader(r, transform.Chain(unicode.BOMOverride(transform.Nop), unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
