package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/store"
)

type backend struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

func newStore(b *backend) *store.Store {
	if b.now == nil {
		b.now = time.Now
	}

	s := store.NewStore(b.dialect.name, b.db.Close)
	s.Countries = &countries{table[domain.Country]{b: b, name: tblCountry,
		load: func(ctx context.Context) ([]domain.Country, error) {
			return selectAll[domain.Country](ctx, b, tblCountry)
		},
	}}
	s.Ports = &ports{table[domain.Port]{b: b, name: tblPort,
		load: func(ctx context.Context) ([]domain.Port, error) {
			r, err := b.rows(ctx, tblCountry, tblPort)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(r.Ports, store.NewLinker(r).Port), nil
		},
	}}
	s.Operators = &operators{table[domain.Operator]{b: b, name: tblOperator,
		load: func(ctx context.Context) ([]domain.Operator, error) {
			return selectAll[domain.Operator](ctx, b, tblOperator)
		},
	}}
	s.VesselTypes = &vesselTypes{table[domain.VesselType]{b: b, name: tblVesselType,
		load: func(ctx context.Context) ([]domain.VesselType, error) {
			return selectAll[domain.VesselType](ctx, b, tblVesselType)
		},
	}}
	s.Locations = &locations{table[domain.Location]{b: b, name: tblLocation,
		load: func(ctx context.Context) ([]domain.Location, error) {
			return selectAll[domain.Location](ctx, b, tblLocation)
		},
	}}
	s.Vessels = &vessels{table[domain.Vessel]{b: b, name: tblVessel,
		load: func(ctx context.Context) ([]domain.Vessel, error) {
			r, err := b.rows(ctx, tblCountry, tblOperator, tblVesselType, tblVessel, tblRegistration)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(r.Vessels, store.NewLinker(r).Vessel), nil
		},
	}}
	s.Registrations = &registrations{table[domain.RegistrationHistory]{b: b, name: tblRegistration,
		load: func(ctx context.Context) ([]domain.RegistrationHistory, error) {
			r, err := b.rows(ctx, tblCountry, tblOperator, tblVesselType, tblRegistration)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(r.Registrations, store.NewLinker(r).Registration), nil
		},
	}}
	s.Voyages = &voyages{table[domain.Voyage]{b: b, name: tblVoyage,
		load: func(ctx context.Context) ([]domain.Voyage, error) {
			r, err := b.rows(ctx, tblCountry, tblOperator, tblVesselType, tblPort,
				tblVessel, tblRegistration, tblVoyage, tblVoyageEvent)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(r.Voyages, store.NewLinker(r).Voyage), nil
		},
	}}
	s.VoyageEvents = &voyageEvents{table[domain.VoyageEvent]{b: b, name: tblVoyageEvent,
		load: func(ctx context.Context) ([]domain.VoyageEvent, error) {
			r, err := b.rows(ctx, tblCountry, tblPort, tblVoyageEvent)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(r.VoyageEvents, store.NewLinker(r).Event), nil
		},
	}}
	s.Sightings = &sightings{table[domain.Sighting]{b: b, name: tblSighting,
		load: func(ctx context.Context) ([]domain.Sighting, error) {
			r, err := b.rows(ctx, tblCountry, tblOperator, tblVesselType, tblLocation, tblPort,
				tblVessel, tblRegistration, tblVoyage, tblVoyageEvent)
			if err != nil {
				return nil, err
			}
			items, err := selectAll[domain.Sighting](ctx, b, tblSighting)
			if err != nil {
				return nil, err
			}
			return store.LinkAll(items, store.NewLinker(r).Sighting), nil
		},
	}}
	s.JobStatuses = &jobStatuses{table[domain.JobStatus]{b: b, name: tblJobStatus,
		load: func(ctx context.Context) ([]domain.JobStatus, error) {
			return selectAll[domain.JobStatus](ctx, b, tblJobStatus)
		},
	}}
	return s
}

func selectAll[T any](ctx context.Context, b *backend, tbl string) ([]T, error) {
	var items []T
	if err := b.db.SelectContext(ctx, &items, "SELECT * FROM "+tbl+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select %s: %w", tbl, err)
	}
	return items, nil
}

// rows loads the named tables into a store.Rows for linking.
func (b *backend) rows(ctx context.Context, tables ...string) (store.Rows, error) {
	var (
		r   store.Rows
		err error
	)
	for _, tbl := range tables {
		switch tbl {
		case tblCountry:
			r.Countries, err = selectAll[domain.Country](ctx, b, tbl)
		case tblOperator:
			r.Operators, err = selectAll[domain.Operator](ctx, b, tbl)
		case tblVesselType:
			r.VesselTypes, err = selectAll[domain.VesselType](ctx, b, tbl)
		case tblLocation:
			r.Locations, err = selectAll[domain.Location](ctx, b, tbl)
		case tblPort:
			r.Ports, err = selectAll[domain.Port](ctx, b, tbl)
		case tblVessel:
			r.Vessels, err = selectAll[domain.Vessel](ctx, b, tbl)
		case tblRegistration:
			r.Registrations, err = selectAll[domain.RegistrationHistory](ctx, b, tbl)
		case tblVoyage:
			r.Voyages, err = selectAll[domain.Voyage](ctx, b, tbl)
		case tblVoyageEvent:
			r.VoyageEvents, err = selectAll[domain.VoyageEvent](ctx, b, tbl)
		default:
			err = fmt.Errorf("unknown table %s", tbl)
		}
		if err != nil {
			return store.Rows{}, err
		}
	}
	return r, nil
}

// insert runs an INSERT and returns the generated id.
func (b *backend) insert(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (int64, error) {
	var id int64
	row := q.QueryRowxContext(ctx, b.db.Rebind(query+" RETURNING id"), args...)
	if err := row.Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// table implements the shared Repository methods. Predicates are Go
// functions, so filtering happens after loading and linking.
type table[T any] struct {
	b    *backend
	name string
	load func(context.Context) ([]T, error)
}

func (t *table[T]) Get(ctx context.Context, where store.Predicate[T]) (*T, error) {
	items, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return store.First(items, where), nil
}

func (t *table[T]) List(ctx context.Context, where store.Predicate[T], page, size int) ([]T, error) {
	items, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return store.Page(items, where, page, size), nil
}

func (t *table[T]) Delete(ctx context.Context, id int64) error {
	res, err := t.b.db.ExecContext(ctx, t.b.db.Rebind("DELETE FROM "+t.name+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete id %d from %s: %w", id, t.name, store.ErrNotFound)
	}
	return nil
}

func (t *table[T]) byID(ctx context.Context, id int64, idOf func(T) int64) (T, error) {
	var zero T
	item, err := t.Get(ctx, func(x T) bool { return idOf(x) == id })
	if err != nil {
		return zero, err
	}
	if item == nil {
		return zero, fmt.Errorf("%s id %d: %w", t.name, id, store.ErrNotFound)
	}
	return *item, nil
}

type countries struct{ table[domain.Country] }

func (r *countries) Add(ctx context.Context, code, name string) (domain.Country, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO COUNTRY (code, name) VALUES (?, ?)", code, name)
	if err != nil {
		return domain.Country{}, fmt.Errorf("add country %q: %w", code, err)
	}
	return domain.Country{ID: id, Code: code, Name: name}, nil
}

type ports struct{ table[domain.Port] }

func (r *ports) Add(ctx context.Context, countryID int64, code, name string) (domain.Port, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO PORT (country_id, code, name) VALUES (?, ?, ?)", countryID, code, name)
	if err != nil {
		return domain.Port{}, fmt.Errorf("add port %q: %w", code, err)
	}
	return r.byID(ctx, id, func(p domain.Port) int64 { return p.ID })
}

type operators struct{ table[domain.Operator] }

func (r *operators) Add(ctx context.Context, name string) (domain.Operator, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO OPERATOR (name) VALUES (?)", name)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("add operator %q: %w", name, err)
	}
	return domain.Operator{ID: id, Name: name}, nil
}

type vesselTypes struct{ table[domain.VesselType] }

func (r *vesselTypes) Add(ctx context.Context, name string) (domain.VesselType, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO VESSEL_TYPE (name) VALUES (?)", name)
	if err != nil {
		return domain.VesselType{}, fmt.Errorf("add vessel type %q: %w", name, err)
	}
	return domain.VesselType{ID: id, Name: name}, nil
}

type locations struct{ table[domain.Location] }

func (r *locations) Add(ctx context.Context, name string) (domain.Location, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO LOCATION (name) VALUES (?)", name)
	if err != nil {
		return domain.Location{}, fmt.Errorf("add location %q: %w", name, err)
	}
	return domain.Location{ID: id, Name: name}, nil
}

type vessels struct{ table[domain.Vessel] }

func (r *vessels) Add(ctx context.Context, v domain.Vessel) (domain.Vessel, error) {
	id, err := r.b.insert(ctx, r.b.db,
		"INSERT INTO VESSEL (identifier, is_imo, built, draught, length, beam) VALUES (?, ?, ?, ?, ?, ?)",
		v.Identifier, v.IsIMO, v.Built, v.Draught, v.Length, v.Beam)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("add vessel %q: %w", v.Identifier, err)
	}
	v.ID = id
	v.RegistrationHistory = nil
	return v, nil
}

func (r *vessels) Update(ctx context.Context, v domain.Vessel) (domain.Vessel, error) {
	res, err := r.b.db.ExecContext(ctx, r.b.db.Rebind(
		"UPDATE VESSEL SET identifier = ?, is_imo = ?, built = ?, draught = ?, length = ?, beam = ? WHERE id = ?"),
		v.Identifier, v.IsIMO, v.Built, v.Draught, v.Length, v.Beam, v.ID)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("update vessel %d: %w", v.ID, mapErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Vessel{}, fmt.Errorf("update vessel %d: %w", v.ID, store.ErrNotFound)
	}
	return r.byID(ctx, v.ID, func(x domain.Vessel) int64 { return x.ID })
}

type registrations struct{ table[domain.RegistrationHistory] }

func (r *registrations) Add(ctx context.Context, h domain.RegistrationHistory) (_ domain.RegistrationHistory, retErr error) {
	tx, err := r.b.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.RegistrationHistory{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		"UPDATE REGISTRATION_HISTORY SET is_active = ? WHERE vessel_id = ?"), false, h.VesselID); err != nil {
		return domain.RegistrationHistory{}, fmt.Errorf("deactivate registrations: %w", err)
	}

	h.Date = r.b.now()
	h.IsActive = true
	id, err := r.b.insert(ctx, tx, `INSERT INTO REGISTRATION_HISTORY
		(vessel_id, vessel_type_id, flag_id, operator_id, date, name, callsign, mmsi,
		 tonnage, passengers, crew, decks, cabins, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.VesselID, h.VesselTypeID, h.FlagID, h.OperatorID, h.Date, h.Name, h.Callsign, h.MMSI,
		h.Tonnage, h.Passengers, h.Crew, h.Decks, h.Cabins, h.IsActive)
	if err != nil {
		return domain.RegistrationHistory{}, fmt.Errorf("add registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.RegistrationHistory{}, fmt.Errorf("commit: %w", err)
	}
	return r.byID(ctx, id, func(x domain.RegistrationHistory) int64 { return x.ID })
}

type voyages struct{ table[domain.Voyage] }

func (r *voyages) Add(ctx context.Context, operatorID, vesselID int64, number string) (domain.Voyage, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO VOYAGE (operator_id, vessel_id, number) VALUES (?, ?, ?)",
		operatorID, vesselID, number)
	if err != nil {
		return domain.Voyage{}, fmt.Errorf("add voyage %q: %w", number, err)
	}
	return r.byID(ctx, id, func(v domain.Voyage) int64 { return v.ID })
}

type voyageEvents struct{ table[domain.VoyageEvent] }

func (r *voyageEvents) Add(ctx context.Context, voyageID, portID int64, eventType domain.VoyageEventType, date time.Time) (domain.VoyageEvent, error) {
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO VOYAGE_EVENT (voyage_id, event_type, port_id, date) VALUES (?, ?, ?, ?)",
		voyageID, eventType, portID, date)
	if err != nil {
		return domain.VoyageEvent{}, fmt.Errorf("add voyage event: %w", err)
	}
	return r.byID(ctx, id, func(e domain.VoyageEvent) int64 { return e.ID })
}

type sightings struct{ table[domain.Sighting] }

func (r *sightings) Add(ctx context.Context, s domain.Sighting) (domain.Sighting, error) {
	id, err := r.b.insert(ctx, r.b.db,
		"INSERT INTO SIGHTING (location_id, voyage_id, vessel_id, date, is_my_voyage) VALUES (?, ?, ?, ?, ?)",
		s.LocationID, s.VoyageID, s.VesselID, s.Date, s.IsMyVoyage)
	if err != nil {
		return domain.Sighting{}, fmt.Errorf("add sighting: %w", err)
	}
	return r.byID(ctx, id, func(x domain.Sighting) int64 { return x.ID })
}

type jobStatuses struct{ table[domain.JobStatus] }

func (r *jobStatuses) Add(ctx context.Context, name, parameters string) (domain.JobStatus, error) {
	j := domain.JobStatus{Name: name, Parameters: parameters, Start: r.b.now()}
	id, err := r.b.insert(ctx, r.b.db, "INSERT INTO JOB_STATUS (name, parameters, start_time) VALUES (?, ?, ?)",
		j.Name, j.Parameters, j.Start)
	if err != nil {
		return domain.JobStatus{}, fmt.Errorf("add job status: %w", err)
	}
	j.ID = id
	return j, nil
}

func (r *jobStatuses) Update(ctx context.Context, id int64, errorMessage string) (domain.JobStatus, error) {
	end := r.b.now()
	res, err := r.b.db.ExecContext(ctx, r.b.db.Rebind("UPDATE JOB_STATUS SET end_time = ?, error = ? WHERE id = ?"),
		end, errorMessage, id)
	if err != nil {
		return domain.JobStatus{}, fmt.Errorf("update job status %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.JobStatus{}, fmt.Errorf("update job status %d: %w", id, store.ErrNotFound)
	}

	var j domain.JobStatus
	err = r.b.db.GetContext(ctx, &j, r.b.db.Rebind("SELECT * FROM JOB_STATUS WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.JobStatus{}, fmt.Errorf("job status %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return domain.JobStatus{}, fmt.Errorf("get job status %d: %w", id, err)
	}
	return j, nil
}
