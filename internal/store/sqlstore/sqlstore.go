// Package sqlstore implements the store on SQLite or PostgreSQL through
// sqlx. Both dialects share one set of queries; placeholders are rebound
// per driver.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JonMunkholm/shiprec/internal/store"
)

const (
	tblCountry      = "COUNTRY"
	tblLocation     = "LOCATION"
	tblOperator     = "OPERATOR"
	tblVesselType   = "VESSEL_TYPE"
	tblPort         = "PORT"
	tblVessel       = "VESSEL"
	tblRegistration = "REGISTRATION_HISTORY"
	tblVoyage       = "VOYAGE"
	tblVoyageEvent  = "VOYAGE_EVENT"
	tblSighting     = "SIGHTING"
	tblJobStatus    = "JOB_STATUS"
)

type dialect struct {
	name      string
	id        string
	real      string
	timestamp string
}

var (
	sqliteDialect = dialect{
		name:      "sqlite",
		id:        "INTEGER PRIMARY KEY AUTOINCREMENT",
		real:      "REAL",
		timestamp: "TIMESTAMP",
	}
	postgresDialect = dialect{
		name:      "postgres",
		id:        "BIGSERIAL PRIMARY KEY",
		real:      "DOUBLE PRECISION",
		timestamp: "TIMESTAMPTZ",
	}
)

const schema = `
CREATE TABLE IF NOT EXISTS COUNTRY (
	id {{id}},
	code VARCHAR(2) NOT NULL UNIQUE,
	name VARCHAR(100) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS LOCATION (
	id {{id}},
	name VARCHAR(100) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS OPERATOR (
	id {{id}},
	name VARCHAR(100) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS VESSEL_TYPE (
	id {{id}},
	name VARCHAR(100) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS PORT (
	id {{id}},
	country_id BIGINT NOT NULL REFERENCES COUNTRY(id),
	code VARCHAR(5) NOT NULL UNIQUE,
	name VARCHAR(100) NOT NULL
);
CREATE TABLE IF NOT EXISTS VESSEL (
	id {{id}},
	identifier VARCHAR(7) NOT NULL UNIQUE,
	is_imo BOOLEAN NOT NULL,
	built INTEGER,
	draught {{real}},
	length INTEGER,
	beam INTEGER
);
CREATE TABLE IF NOT EXISTS REGISTRATION_HISTORY (
	id {{id}},
	vessel_id BIGINT NOT NULL REFERENCES VESSEL(id) ON DELETE CASCADE,
	vessel_type_id BIGINT NOT NULL REFERENCES VESSEL_TYPE(id),
	flag_id BIGINT NOT NULL REFERENCES COUNTRY(id),
	operator_id BIGINT NOT NULL REFERENCES OPERATOR(id),
	date {{timestamp}} NOT NULL,
	name VARCHAR(100) NOT NULL,
	callsign VARCHAR(10) NOT NULL,
	mmsi VARCHAR(9) NOT NULL,
	tonnage INTEGER,
	passengers INTEGER,
	crew INTEGER,
	decks INTEGER,
	cabins INTEGER,
	is_active BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS VOYAGE (
	id {{id}},
	operator_id BIGINT NOT NULL REFERENCES OPERATOR(id),
	vessel_id BIGINT NOT NULL REFERENCES VESSEL(id),
	number VARCHAR(100) NOT NULL,
	UNIQUE (operator_id, number)
);
CREATE TABLE IF NOT EXISTS VOYAGE_EVENT (
	id {{id}},
	voyage_id BIGINT NOT NULL REFERENCES VOYAGE(id) ON DELETE CASCADE,
	event_type INTEGER NOT NULL,
	port_id BIGINT NOT NULL REFERENCES PORT(id),
	date {{timestamp}} NOT NULL
);
CREATE TABLE IF NOT EXISTS SIGHTING (
	id {{id}},
	location_id BIGINT NOT NULL REFERENCES LOCATION(id),
	voyage_id BIGINT REFERENCES VOYAGE(id),
	vessel_id BIGINT NOT NULL REFERENCES VESSEL(id),
	date {{timestamp}} NOT NULL,
	is_my_voyage BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS JOB_STATUS (
	id {{id}},
	name VARCHAR(100) NOT NULL,
	parameters VARCHAR(1000) NOT NULL,
	start_time {{timestamp}} NOT NULL,
	end_time {{timestamp}},
	error VARCHAR(1000) NOT NULL DEFAULT ''
);
`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func (d dialect) ddl() []string {
	r := strings.NewReplacer("{{id}}", d.id, "{{real}}", d.real, "{{timestamp}}", d.timestamp)
	var stmts []string
	for _, stmt := range strings.Split(r.Replace(schema), ";") {
		if strings.TrimSpace(stmt) != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// OpenSQLite opens (creating if needed) a SQLite database file and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		path = "shiprec.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	return open(ctx, db, sqliteDialect)
}

// OpenPostgres applies the schema through an existing pool. Closing the
// returned store closes the database/sql handle, not the pool.
func OpenPostgres(ctx context.Context, pool *pgxpool.Pool) (*store.Store, error) {
	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return open(ctx, db, postgresDialect)
}

func open(ctx context.Context, db *sqlx.DB, d dialect) (*store.Store, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	for _, stmt := range d.ddl() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return newStore(&backend{db: db, dialect: d}), nil
}

// mapErr translates driver uniqueness violations into store.ErrDuplicate.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, store.ErrDuplicate)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", liteErr.Error(), store.ErrDuplicate)
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", err.Error(), store.ErrDuplicate)
	}

	return err
}
