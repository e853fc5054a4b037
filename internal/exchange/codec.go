package exchange

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// Separator joins quoted fields on a line.
	Separator = ","

	// DateFormat is the dd-MMM-yyyy layout used for all dates in files.
	DateFormat = "02-Jan-2006"

	// fieldBoundary is the quote-comma-quote sequence lines are split on.
	// Values containing it are not escaped and will split incorrectly.
	fieldBoundary = `","`
)

// Field describes one column of a flat record: its header name, its
// position, and how to render it.
type Field[R any] struct {
	Name  string
	Order int
	Value func(R) string
}

// Codec converts between raw lines and flat records of one kind.
type Codec[R any] struct {
	pattern *regexp.Regexp
	fields  []Field[R]
	parse   func(values []string) (R, error)
}

// NewCodec builds a codec. pattern is the line shape a raw line must match
// before inflation; parse receives the unquoted, trimmed values in field
// order.
func NewCodec[R any](pattern string, parse func(values []string) (R, error), fields ...Field[R]) Codec[R] {
	sorted := append([]Field[R](nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	return Codec[R]{
		pattern: regexp.MustCompile(pattern),
		fields:  sorted,
		parse:   parse,
	}
}

// Fields returns the field descriptors in output order.
func (c Codec[R]) Fields() []Field[R] {
	return c.fields
}

// Matches reports whether line has the kind's fixed shape.
func (c Codec[R]) Matches(line string) bool {
	return c.pattern.MatchString(line)
}

// Inflate splits line into values and parses them into a flat record.
func (c Codec[R]) Inflate(line string) (R, error) {
	var zero R

	values := SplitLine(line)
	if len(values) != len(c.fields) {
		return zero, &InflationError{Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(c.fields), len(values))}
	}

	r, err := c.parse(values)
	if err != nil {
		return zero, &InflationError{Line: line, Err: err}
	}
	return r, nil
}

// Deflate renders a flat record as a line without a trailing newline.
func (c Codec[R]) Deflate(r R) string {
	values := make([]string, len(c.fields))
	for i, f := range c.fields {
		values[i] = f.Value(r)
	}
	return JoinLine(values, Separator)
}

// Header renders the header line.
func (c Codec[R]) Header() string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return JoinLine(names, Separator)
}

// SplitLine splits a raw line on the quote-comma-quote boundary and strips
// the remaining quotes and surrounding whitespace from each value.
func SplitLine(line string) []string {
	words := strings.Split(line, fieldBoundary)
	for i, w := range words {
		words[i] = strings.TrimSpace(strings.ReplaceAll(w, `"`, ""))
	}
	return words
}

// JoinLine quotes each value and joins them with sep.
func JoinLine(values []string, sep string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteByte('"')
		b.WriteString(v)
		b.WriteByte('"')
	}
	return b.String()
}

func parseOptionalInt(field, s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &n, nil
}

func parseOptionalDecimal(field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &f, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func parseBool(field, s string) (bool, error) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", field, s)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format(DateFormat)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
