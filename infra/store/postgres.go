package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    full_name TEXT NOT NULL DEFAULT '',
    vehicle_type TEXT NOT NULL DEFAULT '',
    drive_mode TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_login TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS trip_history (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    start_location TEXT NOT NULL,
    end_location TEXT NOT NULL,
    distance_km DOUBLE PRECISION NOT NULL,
    energy_consumed_kwh DOUBLE PRECISION NOT NULL,
    charging_cost DOUBLE PRECISION NOT NULL,
    duration_minutes INTEGER NOT NULL,
    drive_mode TEXT NOT NULL,
    soc_start DOUBLE PRECISION NOT NULL,
    soc_end DOUBLE PRECISION NOT NULL,
    route_type TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS trip_history_user_ts ON trip_history(user_id, timestamp DESC);
`

// uniqueViolation is the SQLSTATE of a unique constraint failure.
const uniqueViolation = "23505"

// PostgresStore implements trip.Store and auth.UserStore with a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveTrip(ctx context.Context, rec *model.TripRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO trip_history (
            user_id, start_location, end_location, distance_km, energy_consumed_kwh,
            charging_cost, duration_minutes, drive_mode, soc_start, soc_end, route_type, timestamp)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`,
		rec.UserID, rec.StartLocation, rec.EndLocation, rec.DistanceKm, rec.EnergyKWh,
		rec.ChargingCost, rec.DurationMinutes, rec.DriveMode, rec.SoCStart, rec.SoCEnd,
		rec.RouteType, rec.Timestamp).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("save trip: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTrips(ctx context.Context, userID int64, limit int) ([]model.TripRecord, error) {
	if limit <= 0 {
		limit = trip.DefaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, start_location, end_location,
            distance_km, energy_consumed_kwh, charging_cost, duration_minutes, drive_mode,
            soc_start, soc_end, route_type, timestamp
        FROM trip_history WHERE user_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []model.TripRecord{}
	for rows.Next() {
		var r model.TripRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.StartLocation, &r.EndLocation,
			&r.DistanceKm, &r.EnergyKWh, &r.ChargingCost, &r.DurationMinutes, &r.DriveMode,
			&r.SoCStart, &r.SoCEnd, &r.RouteType, &r.Timestamp); err != nil {
			return nil, err
		}
		r.Timestamp = r.Timestamp.UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context, userID int64) (model.TripStats, error) {
	var st model.TripStats
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*),
            COALESCE(SUM(distance_km), 0),
            COALESCE(SUM(energy_consumed_kwh), 0),
            COALESCE(SUM(charging_cost), 0),
            COALESCE(AVG(energy_consumed_kwh / NULLIF(distance_km, 0)), 0)
        FROM trip_history WHERE user_id = $1`, userID).
		Scan(&st.TotalTrips, &st.TotalDistanceKm, &st.TotalEnergyKWh, &st.TotalCost, &st.AvgKWhPerKm)
	if err != nil {
		return model.TripStats{}, err
	}
	return st, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO users (
            username, email, password_hash, full_name, vehicle_type, drive_mode, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.VehicleType, u.DriveMode, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const pgUserColumns = `id, username, email, password_hash, full_name, vehicle_type, drive_mode, created_at, last_login`

func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return scanPgUser(s.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (model.User, error) {
	return scanPgUser(s.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id))
}

func scanPgUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&u.VehicleType, &u.DriveMode, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (s *PostgresStore) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
