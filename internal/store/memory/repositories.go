package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
)

type countries struct{ table[domain.Country] }

func (r *countries) Add(ctx context.Context, code, name string) (domain.Country, error) {
	if err := ctx.Err(); err != nil {
		return domain.Country{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(c domain.Country) bool { return c.Code == code || c.Name == name }) {
		return domain.Country{}, duplicate("country", code)
	}
	c := domain.Country{ID: r.d.id(), Code: code, Name: name}
	r.insert(c)
	return c, nil
}

type ports struct{ table[domain.Port] }

func (r *ports) Add(ctx context.Context, countryID int64, code, name string) (domain.Port, error) {
	if err := ctx.Err(); err != nil {
		return domain.Port{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(p domain.Port) bool { return p.Code == code }) {
		return domain.Port{}, duplicate("port", code)
	}
	p := domain.Port{ID: r.d.id(), CountryID: countryID, Code: code, Name: name}
	r.insert(p)
	return r.d.linker().Port(p), nil
}

type operators struct{ table[domain.Operator] }

func (r *operators) Add(ctx context.Context, name string) (domain.Operator, error) {
	if err := ctx.Err(); err != nil {
		return domain.Operator{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(o domain.Operator) bool { return o.Name == name }) {
		return domain.Operator{}, duplicate("operator", name)
	}
	o := domain.Operator{ID: r.d.id(), Name: name}
	r.insert(o)
	return o, nil
}

type vesselTypes struct{ table[domain.VesselType] }

func (r *vesselTypes) Add(ctx context.Context, name string) (domain.VesselType, error) {
	if err := ctx.Err(); err != nil {
		return domain.VesselType{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(t domain.VesselType) bool { return t.Name == name }) {
		return domain.VesselType{}, duplicate("vessel type", name)
	}
	t := domain.VesselType{ID: r.d.id(), Name: name}
	r.insert(t)
	return t, nil
}

type locations struct{ table[domain.Location] }

func (r *locations) Add(ctx context.Context, name string) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(l domain.Location) bool { return l.Name == name }) {
		return domain.Location{}, duplicate("location", name)
	}
	l := domain.Location{ID: r.d.id(), Name: name}
	r.insert(l)
	return l, nil
}

type vessels struct{ table[domain.Vessel] }

func (r *vessels) Add(ctx context.Context, v domain.Vessel) (domain.Vessel, error) {
	if err := ctx.Err(); err != nil {
		return domain.Vessel{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(x domain.Vessel) bool { return x.Identifier == v.Identifier }) {
		return domain.Vessel{}, duplicate("vessel", v.Identifier)
	}
	v.ID = r.d.id()
	v.RegistrationHistory = nil
	r.insert(v)
	return v, nil
}

func (r *vessels) Update(ctx context.Context, v domain.Vessel) (domain.Vessel, error) {
	if err := ctx.Err(); err != nil {
		return domain.Vessel{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(x domain.Vessel) bool { return x.Identifier == v.Identifier && x.ID != v.ID }) {
		return domain.Vessel{}, duplicate("vessel", v.Identifier)
	}
	v.RegistrationHistory = nil
	if !r.replace(v.ID, v) {
		return domain.Vessel{}, fmt.Errorf("update vessel %d: %w", v.ID, store.ErrNotFound)
	}
	return r.d.linker().Vessel(v), nil
}

type registrations struct{ table[domain.RegistrationHistory] }

func (r *registrations) Add(ctx context.Context, h domain.RegistrationHistory) (domain.RegistrationHistory, error) {
	if err := ctx.Err(); err != nil {
		return domain.RegistrationHistory{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	rows := r.rows(r.d)
	for i := range *rows {
		if (*rows)[i].VesselID == h.VesselID {
			(*rows)[i].IsActive = false
		}
	}

	h.ID = r.d.id()
	h.Date = r.d.now()
	h.IsActive = true
	h.VesselType, h.Flag, h.Operator = nil, nil, nil
	r.insert(h)
	return r.d.linker().Registration(h), nil
}

type voyages struct{ table[domain.Voyage] }

func (r *voyages) Add(ctx context.Context, operatorID, vesselID int64, number string) (domain.Voyage, error) {
	if err := ctx.Err(); err != nil {
		return domain.Voyage{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.exists(func(v domain.Voyage) bool { return v.OperatorID == operatorID && v.Number == number }) {
		return domain.Voyage{}, duplicate("voyage", number)
	}
	v := domain.Voyage{ID: r.d.id(), OperatorID: operatorID, VesselID: vesselID, Number: number}
	r.insert(v)
	return r.d.linker().Voyage(v), nil
}

type voyageEvents struct{ table[domain.VoyageEvent] }

func (r *voyageEvents) Add(ctx context.Context, voyageID, portID int64, eventType domain.VoyageEventType, date time.Time) (domain.VoyageEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.VoyageEvent{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	e := domain.VoyageEvent{ID: r.d.id(), VoyageID: voyageID, PortID: portID, EventType: eventType, Date: date}
	r.insert(e)
	return r.d.linker().Event(e), nil
}

type sightings struct{ table[domain.Sighting] }

func (r *sightings) Add(ctx context.Context, s domain.Sighting) (domain.Sighting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sighting{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	s.ID = r.d.id()
	s.Location, s.Vessel, s.Voyage = nil, nil, nil
	r.insert(s)
	return r.d.linker().Sighting(s), nil
}

type jobStatuses struct{ table[domain.JobStatus] }

func (r *jobStatuses) Add(ctx context.Context, name, parameters string) (domain.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobStatus{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	j := domain.JobStatus{ID: r.d.id(), Name: name, Parameters: parameters, Start: r.d.now()}
	r.insert(j)
	return j, nil
}

func (r *jobStatuses) Update(ctx context.Context, id int64, errorMessage string) (domain.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobStatus{}, err
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	rows := r.rows(r.d)
	for i := range *rows {
		if (*rows)[i].ID == id {
			end := r.d.now()
			(*rows)[i].End = &end
			(*rows)[i].Error = errorMessage
			return (*rows)[i], nil
		}
	}
	return domain.JobStatus{}, fmt.Errorf("update job status %d: %w", id, store.ErrNotFound)
}
