package exchange

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
	"github.com/JonMunkholm/shiprec/internal/store/memory"
)

func readFile(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	lines, err := ReadLines(f)
	require.NoError(t, err)
	return lines
}

func TestExport_VoyageFanOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, importLines(t, f.store, Vessels, "", qm2))
	require.NoError(t, importLines(t, f.store, Voyages, "",
		`"9241061","Cunard","M123","Depart","GBSOU","01-Jan-2026"`,
		`"9241061","Cunard","M123","Arrive","GBSOU","05-Jan-2026"`,
		`"9241061","Cunard","M123","Depart","GBSOU","06-Jan-2026"`,
	))
	vessel, err := f.store.Vessels.Get(context.Background(), func(v domain.Vessel) bool { return v.Identifier == "9241061" })
	require.NoError(t, err)
	require.NotNil(t, vessel)
	// no events, no lines
	_, err = f.store.Voyages.Add(context.Background(), f.cunard.ID, vessel.ID, "EMPTY")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "voyages.csv")
	var counts []int
	ex := NewExporter(f.store, Voyages)
	ex.OnExported = func(count int, _ VoyageRecord) { counts = append(counts, count) }
	require.NoError(t, ex.Export(context.Background(), path))

	lines := readFile(t, path)
	require.Len(t, lines, 4)
	assert.Equal(t, `"Identifier","Operator","Number","Event Type","Port","Date"`, lines[0])
	assert.Equal(t, `"9241061","Cunard","M123","Arrive","GBSOU","05-Jan-2026"`, lines[2])
	assert.Equal(t, []int{1, 2, 3}, counts)
}

// A file exported from one store imports cleanly into a fresh store with
// the same reference data and exports identically.
func TestExport_ImportSymmetry(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	require.NoError(t, importLines(t, src.store, Vessels, "", qm2,
		`"9074729","1990","","","","","","","","","Black Watch","C6JB2","311000123","Passenger","GB","Cunard"`))
	require.NoError(t, importLines(t, src.store, Sightings, "",
		`"02-Jan-2026","Calshot","9241061","","True"`,
		`"04-Jan-2026","Calshot","9074729","","False"`))

	exportAll := func(s *store.Store, dir string) {
		require.NoError(t, NewExporter(s, Vessels).Export(ctx, filepath.Join(dir, "vessels.csv")))
		require.NoError(t, NewExporter(s, Sightings).Export(ctx, filepath.Join(dir, "sightings.csv")))
	}

	first := t.TempDir()
	exportAll(src.store, first)

	dst := newFixture(t)
	require.NoError(t, importFileAt(t, dst.store, Vessels, filepath.Join(first, "vessels.csv")))
	require.NoError(t, importFileAt(t, dst.store, Sightings, filepath.Join(first, "sightings.csv")))

	second := t.TempDir()
	exportAll(dst.store, second)

	for _, name := range []string{"vessels.csv", "sightings.csv"} {
		assert.Equal(t, readFile(t, filepath.Join(first, name)), readFile(t, filepath.Join(second, name)), name)
	}
}

func importFileAt[E, R any](t *testing.T, s *store.Store, kind Kind[E, R], path string) error {
	t.Helper()
	im := NewImporter(s, kind, nil)
	im.Now = func() time.Time { return fixedNow }
	return im.ImportFile(context.Background(), path)
}

func TestExportEntities_SkipsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.csv")

	// nil store: ExportEntities must not touch it
	ex := NewExporter[domain.Country, CountryRecord](nil, Countries)
	err := ex.ExportEntities(context.Background(), []domain.Country{{ID: 1, Code: "GB", Name: "United Kingdom"}}, path)
	require.NoError(t, err)

	assert.Equal(t, []string{`"Code","Name"`, `"GB","United Kingdom"`}, readFile(t, path))
}

func TestExportEntities_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExporter[domain.Country, CountryRecord](nil, Countries)
	err := ex.ExportEntities(ctx, nil, filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExporter_WriteTo(t *testing.T) {
	s := memory.New()
	require.NoError(t, importLines(t, s, Countries, "", `"GB","United Kingdom"`, `"FR","France"`))

	var buf bytes.Buffer
	require.NoError(t, NewExporter(s, Countries).WriteTo(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{`"Code","Name"`, `"GB","United Kingdom"`, `"FR","France"`}, lines)
}

func TestExport_VesselWithoutRegistration(t *testing.T) {
	s := memory.New()
	_, err := s.Vessels.Add(context.Background(), domain.Vessel{Identifier: "9241061", IsIMO: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewExporter(s, Vessels).WriteTo(context.Background(), &buf))
	assert.Contains(t, buf.String(), `"9241061","","","","","","","","","","","","","","",""`)
}
