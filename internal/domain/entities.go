// Package domain holds the persisted entities of the shipping recorder.
package domain

import "time"

// Country is identified by its 2-letter ISO code.
type Country struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Port is identified by its 5-character UN/LOCODE. The first two
// characters of the code are the country code.
type Port struct {
	ID        int64    `db:"id" json:"id"`
	CountryID int64    `db:"country_id" json:"countryId"`
	Code      string   `db:"code" json:"code"`
	Name      string   `db:"name" json:"name"`
	Country   *Country `db:"-" json:"country,omitempty"`
}

type Operator struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type VesselType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Location is a place from which vessels are sighted.
type Location struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Vessel holds the physical attributes of a ship. Registration details
// (name, flag, operator, ...) change over time and live in
// RegistrationHistory.
type Vessel struct {
	ID         int64    `db:"id" json:"id"`
	Identifier string   `db:"identifier" json:"identifier"`
	IsIMO      bool     `db:"is_imo" json:"isImo"`
	Built      *int     `db:"built" json:"built,omitempty"`
	Draught    *float64 `db:"draught" json:"draught,omitempty"`
	Length     *int     `db:"length" json:"length,omitempty"`
	Beam       *int     `db:"beam" json:"beam,omitempty"`

	RegistrationHistory []RegistrationHistory `db:"-" json:"registrationHistory,omitempty"`
}

// ActiveRegistration returns the vessel's active registration, or nil if
// the history is empty or not loaded.
func (v *Vessel) ActiveRegistration() *RegistrationHistory {
	for i := range v.RegistrationHistory {
		if v.RegistrationHistory[i].IsActive {
			return &v.RegistrationHistory[i]
		}
	}
	return nil
}

// RegistrationHistory is one registration record of a vessel. At most one
// row per vessel is active.
type RegistrationHistory struct {
	ID           int64     `db:"id" json:"id"`
	VesselID     int64     `db:"vessel_id" json:"vesselId"`
	VesselTypeID int64     `db:"vessel_type_id" json:"vesselTypeId"`
	FlagID       int64     `db:"flag_id" json:"flagId"`
	OperatorID   int64     `db:"operator_id" json:"operatorId"`
	Date         time.Time `db:"date" json:"date"`
	Name         string    `db:"name" json:"name"`
	Callsign     string    `db:"callsign" json:"callsign"`
	MMSI         string    `db:"mmsi" json:"mmsi"`
	Tonnage      *int      `db:"tonnage" json:"tonnage,omitempty"`
	Passengers   *int      `db:"passengers" json:"passengers,omitempty"`
	Crew         *int      `db:"crew" json:"crew,omitempty"`
	Decks        *int      `db:"decks" json:"decks,omitempty"`
	Cabins       *int      `db:"cabins" json:"cabins,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`

	VesselType *VesselType `db:"-" json:"vesselType,omitempty"`
	Flag       *Country    `db:"-" json:"flag,omitempty"`
	Operator   *Operator   `db:"-" json:"operator,omitempty"`
}

// Voyage is identified by (operator, number).
type Voyage struct {
	ID         int64  `db:"id" json:"id"`
	OperatorID int64  `db:"operator_id" json:"operatorId"`
	VesselID   int64  `db:"vessel_id" json:"vesselId"`
	Number     string `db:"number" json:"number"`

	Operator *Operator     `db:"-" json:"operator,omitempty"`
	Vessel   *Vessel       `db:"-" json:"vessel,omitempty"`
	Events   []VoyageEvent `db:"-" json:"events,omitempty"`
}

type VoyageEvent struct {
	ID        int64           `db:"id" json:"id"`
	VoyageID  int64           `db:"voyage_id" json:"voyageId"`
	EventType VoyageEventType `db:"event_type" json:"eventType"`
	PortID    int64           `db:"port_id" json:"portId"`
	Date      time.Time       `db:"date" json:"date"`

	Port *Port `db:"-" json:"port,omitempty"`
}

// Sighting records a vessel seen from a location on a date, optionally
// while on a known voyage.
type Sighting struct {
	ID         int64     `db:"id" json:"id"`
	LocationID int64     `db:"location_id" json:"locationId"`
	VoyageID   *int64    `db:"voyage_id" json:"voyageId,omitempty"`
	VesselID   int64     `db:"vessel_id" json:"vesselId"`
	Date       time.Time `db:"date" json:"date"`
	IsMyVoyage bool      `db:"is_my_voyage" json:"isMyVoyage"`

	Location *Location `db:"-" json:"location,omitempty"`
	Vessel   *Vessel   `db:"-" json:"vessel,omitempty"`
	Voyage   *Voyage   `db:"-" json:"voyage,omitempty"`
}

// JobStatus records one background import or export run.
type JobStatus struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Parameters string     `db:"parameters" json:"parameters"`
	Start      time.Time  `db:"start_time" json:"start"`
	End        *time.Time `db:"end_time" json:"end,omitempty"`
	Error      string     `db:"error" json:"error,omitempty"`
}
