package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// VoyageEventType is the kind of port call recorded on a voyage.
type VoyageEventType int

const (
	EventNone VoyageEventType = iota
	EventDepart
	EventArrive
)

var eventTypeNames = [...]string{"None", "Depart", "Arrive"}

func (t VoyageEventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("VoyageEventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

// ParseVoyageEventType matches s against the enumeration names, ignoring
// case and surrounding whitespace.
func ParseVoyageEventType(s string) (VoyageEventType, error) {
	s = strings.TrimSpace(s)
	for i, name := range eventTypeNames {
		if strings.EqualFold(name, s) {
			return VoyageEventType(i), nil
		}
	}
	return EventNone, fmt.Errorf("unknown voyage event type %q", s)
}

func (t VoyageEventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *VoyageEventType) UnmarshalText(b []byte) error {
	v, err := ParseVoyageEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value stores the event type as its integer ordinal.
func (t VoyageEventType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *VoyageEventType) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*t = VoyageEventType(v)
	case int32:
		*t = VoyageEventType(v)
	case nil:
		*t = EventNone
	default:
		return fmt.Errorf("cannot scan %T into VoyageEventType", src)
	}
	return nil
}
