// Package store persists trip history and user accounts in SQLite or
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    full_name TEXT,
    vehicle_type TEXT,
    drive_mode TEXT,
    created_at INTEGER NOT NULL,
    last_login INTEGER
);
CREATE TABLE IF NOT EXISTS trip_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    start_location TEXT,
    end_location TEXT,
    distance_km REAL,
    energy_consumed_kwh REAL,
    charging_cost REAL,
    duration_minutes INTEGER,
    drive_mode TEXT,
    soc_start REAL,
    soc_end REAL,
    route_type TEXT,
    timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS trip_history_user_ts ON trip_history(user_id, timestamp DESC);
`

// SQLiteStore implements trip.Store and auth.UserStore on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures the schema.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveTrip inserts rec and sets its ID.
func (s *SQLiteStore) SaveTrip(ctx context.Context, rec *model.TripRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO trip_history (
        user_id, start_location, end_location, distance_km, energy_consumed_kwh,
        charging_cost, duration_minutes, drive_mode, soc_start, soc_end, route_type, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.StartLocation, rec.EndLocation, rec.DistanceKm, rec.EnergyKWh,
		rec.ChargingCost, rec.DurationMinutes, rec.DriveMode, rec.SoCStart, rec.SoCEnd,
		rec.RouteType, rec.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("save trip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListTrips returns up to limit trips of userID, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context, userID int64, limit int) ([]model.TripRecord, error) {
	if limit <= 0 {
		limit = trip.DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, start_location, end_location,
        distance_km, energy_consumed_kwh, charging_cost, duration_minutes, drive_mode,
        soc_start, soc_end, route_type, timestamp
        FROM trip_history WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.TripRecord{}
	for rows.Next() {
		var r model.TripRecord
		var ts int64
		if err := rows.Scan(&r.ID, &r.UserID, &r.StartLocation, &r.EndLocation,
			&r.DistanceKm, &r.EnergyKWh, &r.ChargingCost, &r.DurationMinutes, &r.DriveMode,
			&r.SoCStart, &r.SoCEnd, &r.RouteType, &ts); err != nil {
			return nil, err
		}
		r.Timestamp = time.UnixMilli(ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Stats aggregates the trip history of userID.
func (s *SQLiteStore) Stats(ctx context.Context, userID int64) (model.TripStats, error) {
	var st model.TripStats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
        COALESCE(SUM(distance_km), 0),
        COALESCE(SUM(energy_consumed_kwh), 0),
        COALESCE(SUM(charging_cost), 0),
        COALESCE(AVG(energy_consumed_kwh / NULLIF(distance_km, 0)), 0)
        FROM trip_history WHERE user_id = ?`, userID).
		Scan(&st.TotalTrips, &st.TotalDistanceKm, &st.TotalEnergyKWh, &st.TotalCost, &st.AvgKWhPerKm)
	if err != nil {
		return model.TripStats{}, err
	}
	return st, nil
}

// CreateUser inserts u and sets its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (
        username, email, password_hash, full_name, vehicle_type, drive_mode, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.VehicleType, u.DriveMode, u.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

const userColumns = `id, username, email, password_hash, COALESCE(full_name, ''),
        COALESCE(vehicle_type, ''), COALESCE(drive_mode, ''), created_at, last_login`

// UserByUsername returns the account called username.
func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// UserByID returns the account with the given ID.
func (s *SQLiteStore) UserByID(ctx context.Context, id int64) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var created int64
	var last sql.NullInt64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&u.VehicleType, &u.DriveMode, &created, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	if last.Valid {
		t := time.UnixMilli(last.Int64).UTC()
		u.LastLogin = &t
	}
	return u, nil
}

// TouchLogin records a successful login.
func (s *SQLiteStore) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at.UnixMilli(), id)
	return err
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
