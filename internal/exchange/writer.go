package exchange

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// LineWriter writes flat records as a header line followed by one quoted
// line per record. It knows nothing about record kinds beyond the field
// descriptors it is given.
type LineWriter[R any] struct {
	Fields    []Field[R]
	Separator string

	// OnExported is called after each record line is written with the
	// 1-based record count.
	OnExported func(count int, record R)
}

// NewLineWriter returns a comma-separated writer for codec's fields.
func NewLineWriter[R any](codec Codec[R]) *LineWriter[R] {
	return &LineWriter[R]{Fields: codec.Fields(), Separator: Separator}
}

// Write streams records to out.
func (w *LineWriter[R]) Write(out io.Writer, records []R) error {
	sep := w.Separator
	if sep == "" {
		sep = Separator
	}

	bw := bufio.NewWriter(out)

	names := make([]string, len(w.Fields))
	for i, f := range w.Fields {
		names[i] = f.Name
	}
	if _, err := fmt.Fprintln(bw, JoinLine(names, sep)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	values := make([]string, len(w.Fields))
	for i, r := range records {
		for j, f := range w.Fields {
			values[j] = f.Value(r)
		}
		if _, err := fmt.Fprintln(bw, JoinLine(values, sep)); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
		if w.OnExported != nil {
			w.OnExported(i+1, r)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Export writes records to the file at path, replacing it. A failure part
// way through leaves the file truncated.
func (w *LineWriter[R]) Export(records []R, path string) (retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return w.Write(f, records)
}
