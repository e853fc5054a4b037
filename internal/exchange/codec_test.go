package exchange

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestSplitLine(t *testing.T) {
	got := SplitLine(`"GB", "  United Kingdom "` + "\r")
	// only the exact quote-comma-quote boundary splits
	assert.Equal(t, []string{`GB,   United Kingdom`}, got)

	got = SplitLine(`"GB","  United Kingdom "` + "\r")
	assert.Equal(t, []string{"GB", "United Kingdom"}, got)
}

func TestJoinLine(t *testing.T) {
	assert.Equal(t, `"GB","United Kingdom"`, JoinLine([]string{"GB", "United Kingdom"}, ","))
	assert.Equal(t, `"a";"";"c"`, JoinLine([]string{"a", "", "c"}, ";"))
}

func TestCountryCodec(t *testing.T) {
	codec := Countries.Codec

	r, err := codec.Inflate(`"gb","UNITED KINGDOM"`)
	require.NoError(t, err)
	assert.Equal(t, CountryRecord{Code: "GB", Name: "United Kingdom"}, r)
	assert.Equal(t, `"GB","United Kingdom"`, codec.Deflate(r))
	assert.Equal(t, `"Code","Name"`, codec.Header())
}

func TestRoundTrip(t *testing.T) {
	date := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)

	t.Run("country", func(t *testing.T) {
		r := CountryRecord{Code: "FR", Name: "France"}
		got, err := Countries.Codec.Inflate(Countries.Codec.Deflate(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})

	t.Run("port", func(t *testing.T) {
		r := PortRecord{Code: "GBSOU", Name: "Southampton"}
		got, err := Ports.Codec.Inflate(Ports.Codec.Deflate(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})

	t.Run("named", func(t *testing.T) {
		r := NamedRecord{Name: "Cunard Line"}
		got, err := Operators.Codec.Inflate(Operators.Codec.Deflate(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)

		loc := NamedRecord{Name: "Calshot Spit"}
		got, err = Locations.Codec.Inflate(Locations.Codec.Deflate(loc))
		require.NoError(t, err)
		assert.Equal(t, loc, got)
	})

	t.Run("vessel with nulls", func(t *testing.T) {
		r := VesselRecord{
			Identifier: "9241061",
			Built:      intPtr(2003),
			Draught:    floatPtr(10.3),
			Length:     intPtr(345),
			Tonnage:    intPtr(149215),
			Name:       "Queen Mary 2",
			Callsign:   "GBQM2",
			MMSI:       "310627000",
			VesselType: "Passenger",
			Flag:       "BM",
			Operator:   "Cunard",
		}
		line := Vessels.Codec.Deflate(r)
		assert.Equal(t, `"9241061","2003","10.3","345","","149215","","","","","Queen Mary 2","GBQM2","310627000","Passenger","BM","Cunard"`, line)
		assert.True(t, Vessels.Codec.Matches(line))

		got, err := Vessels.Codec.Inflate(line)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})

	t.Run("voyage", func(t *testing.T) {
		r := VoyageRecord{Identifier: "9241061", Operator: "Cunard", Number: "M123", EventType: "Depart", Port: "GBSOU", Date: "07-Jan-2026"}
		line := Voyages.Codec.Deflate(r)
		assert.True(t, Voyages.Codec.Matches(line))

		got, err := Voyages.Codec.Inflate(line)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})

	t.Run("sighting", func(t *testing.T) {
		r := SightingRecord{Date: date, Location: "Calshot", Identifier: "9241061", VoyageNumber: "M123", IsMyVoyage: true}
		line := Sightings.Codec.Deflate(r)
		assert.Equal(t, `"07-Jan-2026","Calshot","9241061","M123","True"`, line)
		assert.True(t, Sightings.Codec.Matches(line))

		got, err := Sightings.Codec.Inflate(line)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name  string
		match func(string) bool
		line  string
		want  bool
	}{
		{"country ok", Countries.Codec.Matches, `"GB","United Kingdom"`, true},
		{"country ok with CR", Countries.Codec.Matches, `"GB","United Kingdom"` + "\r", true},
		{"country code too short", Countries.Codec.Matches, `"G","United Kingdom"`, false},
		{"country code too long", Countries.Codec.Matches, `"GBR","United Kingdom"`, false},
		{"country code with digit", Countries.Codec.Matches, `"G1","United Kingdom"`, false},
		{"country blank name", Countries.Codec.Matches, `"GB","  "`, false},
		{"country single field", Countries.Codec.Matches, `"bad"`, false},
		{"port ok", Ports.Codec.Matches, `"GBSOU","Southampton"`, true},
		{"port alnum", Ports.Codec.Matches, `"US2AB","Somewhere"`, true},
		{"port digit in country", Ports.Codec.Matches, `"G1SOU","Southampton"`, false},
		{"named ok", Operators.Codec.Matches, `"Cunard"`, true},
		{"named empty", Operators.Codec.Matches, `""`, false},
		{"vessel short mmsi", Vessels.Codec.Matches,
			`"9241061","","","","","","","","","","Queen Mary 2","GBQM2","31062700","Passenger","BM","Cunard"`, false},
		{"voyage bad date", Voyages.Codec.Matches, `"9241061","Cunard","M123","Depart","GBSOU","7-Jan-2026"`, false},
		{"sighting lower bool", Sightings.Codec.Matches, `"07-Jan-2026","Calshot","9241061","","false"`, true},
		{"sighting bad bool", Sightings.Codec.Matches, `"07-Jan-2026","Calshot","9241061","","yes"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.match(tt.line))
		})
	}
}

func TestInflate_Errors(t *testing.T) {
	_, err := Vessels.Codec.Inflate(`"9241061","","1.2.3","","","","","","","","Queen Mary 2","GBQM2","310627000","Passenger","BM","Cunard"`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInflation))
	assert.Contains(t, err.Error(), "Draught")

	_, err = Sightings.Codec.Inflate(`"31-Feb-2026","Calshot","9241061","","True"`)
	assert.ErrorIs(t, err, ErrInflation)

	_, err = Countries.Codec.Inflate(`"GB"`)
	var inflErr *InflationError
	require.ErrorAs(t, err, &inflErr)
	assert.True(t, strings.Contains(inflErr.Error(), "expected 2 fields"))
}

func TestIsIMONumber(t *testing.T) {
	assert.True(t, IsIMONumber("9241061"))
	assert.True(t, IsIMONumber("9074729"))
	assert.False(t, IsIMONumber("9241062"))
	assert.False(t, IsIMONumber("924106"))
	assert.False(t, IsIMONumber("92410AB"))
}
