package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/shiprec/internal/domain"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	even := func(n int) bool { return n%2 == 0 }

	tests := []struct {
		name  string
		where Predicate[int]
		page  int
		size  int
		want  []int
	}{
		{"all on one page", All[int], 1, AllRows, []int{1, 2, 3, 4, 5, 6, 7}},
		{"nil predicate matches all", nil, 1, 3, []int{1, 2, 3}},
		{"second page", All[int], 2, 3, []int{4, 5, 6}},
		{"last partial page", All[int], 3, 3, []int{7}},
		{"past the end", All[int], 4, 3, []int{}},
		{"filtered", even, 1, 2, []int{2, 4}},
		{"filtered second page", even, 2, 2, []int{6}},
		{"zero size", All[int], 1, 0, []int{}},
		{"huge size on later page", All[int], 2, AllRows, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Page(items, tt.where, tt.page, tt.size))
		})
	}
}

func TestFirst(t *testing.T) {
	items := []string{"a", "b", "c"}

	got := First(items, func(s string) bool { return s > "a" })
	require.NotNil(t, got)
	assert.Equal(t, "b", *got)

	assert.Nil(t, First(items, func(s string) bool { return s == "z" }))
}

func TestLinker(t *testing.T) {
	rows := Rows{
		Countries:   []domain.Country{{ID: 1, Code: "GB", Name: "United Kingdom"}},
		Operators:   []domain.Operator{{ID: 2, Name: "Cunard"}},
		VesselTypes: []domain.VesselType{{ID: 3, Name: "Passenger"}},
		Ports:       []domain.Port{{ID: 4, CountryID: 1, Code: "GBSOU", Name: "Southampton"}},
		Vessels:     []domain.Vessel{{ID: 5, Identifier: "9241061"}},
		Registrations: []domain.RegistrationHistory{
			{ID: 7, VesselID: 5, FlagID: 1, OperatorID: 2, VesselTypeID: 3, Name: "Queen Mary 2", IsActive: true},
			{ID: 6, VesselID: 5, FlagID: 1, OperatorID: 2, VesselTypeID: 3, Name: "QM2"},
		},
		Voyages:      []domain.Voyage{{ID: 8, OperatorID: 2, VesselID: 5, Number: "M123"}},
		VoyageEvents: []domain.VoyageEvent{{ID: 9, VoyageID: 8, PortID: 4, EventType: domain.EventDepart}},
	}

	l := NewLinker(rows)

	port := l.Port(rows.Ports[0])
	require.NotNil(t, port.Country)
	assert.Equal(t, "GB", port.Country.Code)

	vessel := l.Vessel(rows.Vessels[0])
	require.Len(t, vessel.RegistrationHistory, 2)
	assert.Equal(t, int64(6), vessel.RegistrationHistory[0].ID, "history sorted by id")
	active := vessel.ActiveRegistration()
	require.NotNil(t, active)
	assert.Equal(t, "Queen Mary 2", active.Name)
	assert.Equal(t, "Cunard", active.Operator.Name)
	assert.Equal(t, "Passenger", active.VesselType.Name)

	voyage := l.Voyage(rows.Voyages[0])
	require.Len(t, voyage.Events, 1)
	assert.Equal(t, "GBSOU", voyage.Events[0].Port.Code)
	assert.Equal(t, "GB", voyage.Events[0].Port.Country.Code)
	assert.Equal(t, "9241061", voyage.Vessel.Identifier)

	voyageID := int64(8)
	s := l.Sighting(domain.Sighting{VesselID: 5, VoyageID: &voyageID})
	require.NotNil(t, s.Voyage)
	assert.Equal(t, "M123", s.Voyage.Number)
	assert.Nil(t, s.Location)
}
