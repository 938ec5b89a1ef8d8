package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// FlightRepo provides read access to flights and the reference data needed
// to search and render them, plus the transactional recomputation of the
// fully_booked flag. All timestamps are stored and compared in UTC.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a FlightRepo bound to the provided database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span multiple repositories.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// WindowFilter narrows the flights fetched for a search window. Zero
// values disable a filter. Fully booked flights are always excluded.
type WindowFilter struct {
	AirlineID       uint64
	MaxEconomyCents uint32
}

// WindowData is everything a search graph needs for one date window:
// flights grouped later by departure airport, and the routes, airports,
// airlines and aircraft they touch.
type WindowData struct {
	Flights  []model.Flight
	Routes   map[uint64]model.Route
	Airports map[uint64]model.Airport
	Airlines map[uint64]model.Airline
	Aircraft map[uint64]model.AircraftConfiguration
}

// LoadWindow fetches all non-fully-booked flights departing inside
// [start, end) together with their reference data. One load call is meant
// to service many search invocations against the same window; callers
// must rebuild for a different window rather than filtering the result.
func (r *FlightRepo) LoadWindow(ctx context.Context, start, end time.Time, f WindowFilter) (*WindowData, error) {
	q := `SELECT f.id, f.route_id, f.aircraft_config_id, f.departure_time, f.arrival_time,
	             f.terminal, f.gate,
	             f.first_price_cents, f.business_price_cents, f.economy_price_cents,
	             f.insurance_price_cents, f.fully_booked
	      FROM flights f
	      JOIN routes rt ON rt.id = f.route_id
	      WHERE f.departure_time >= ? AND f.departure_time < ? AND f.fully_booked = 0`
	args := []interface{}{start.UTC(), end.UTC()}
	if f.AirlineID != 0 {
		q += ` AND rt.airline_id = ?`
		args = append(args, f.AirlineID)
	}
	if f.MaxEconomyCents != 0 {
		q += ` AND f.economy_price_cents <= ?`
		args = append(args, f.MaxEconomyCents)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := &WindowData{
		Routes:   make(map[uint64]model.Route),
		Airports: make(map[uint64]model.Airport),
		Airlines: make(map[uint64]model.Airline),
		Aircraft: make(map[uint64]model.AircraftConfiguration),
	}
	routeIDs := make(map[uint64]struct{})
	craftIDs := make(map[uint64]struct{})
	for rows.Next() {
		var fl model.Flight
		if err := rows.Scan(&fl.ID, &fl.RouteID, &fl.AircraftConfigID, &fl.DepartureTime, &fl.ArrivalTime,
			&fl.Terminal, &fl.Gate,
			&fl.FirstPriceCents, &fl.BusinessPriceCents, &fl.EconomyPriceCents,
			&fl.InsurancePriceCents, &fl.FullyBooked); err != nil {
			return nil, err
		}
		data.Flights = append(data.Flights, fl)
		routeIDs[fl.RouteID] = struct{}{}
		craftIDs[fl.AircraftConfigID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(data.Flights) == 0 {
		return data, nil
	}

	if err := r.loadRoutes(ctx, routeIDs, data); err != nil {
		return nil, err
	}
	if err := r.loadAircraft(ctx, craftIDs, data); err != nil {
		return nil, err
	}
	return data, nil
}

// loadRoutes fetches the routes referenced by the window's flights along
// with every airport and airline they touch.
func (r *FlightRepo) loadRoutes(ctx context.Context, ids map[uint64]struct{}, data *WindowData) error {
	q, args := buildInQuery(`SELECT id, airline_id, departure_airport_id, arrival_airport_id,
	                                flight_number, period_start, period_end
	                         FROM routes WHERE id IN `, ids)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	airportIDs := make(map[uint64]struct{})
	airlineIDs := make(map[uint64]struct{})
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.AirlineID, &rt.DepartureAirportID, &rt.ArrivalAirportID,
			&rt.FlightNumber, &rt.PeriodStart, &rt.PeriodEnd); err != nil {
			return err
		}
		data.Routes[rt.ID] = rt
		airportIDs[rt.DepartureAirportID] = struct{}{}
		airportIDs[rt.ArrivalAirportID] = struct{}{}
		airlineIDs[rt.AirlineID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	q, args = buildInQuery(`SELECT id, name, iata_code, icao_code, latitude, longitude, city_id
	                        FROM airports WHERE id IN `, airportIDs)
	arows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		var ap model.Airport
		if err := arows.Scan(&ap.ID, &ap.Name, &ap.IATA, &ap.ICAO, &ap.Latitude, &ap.Longitude, &ap.CityID); err != nil {
			return err
		}
		data.Airports[ap.ID] = ap
	}
	if err := arows.Err(); err != nil {
		return err
	}

	q, args = buildInQuery(`SELECT id, name, code FROM airlines WHERE id IN `, airlineIDs)
	lrows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer lrows.Close()
	for lrows.Next() {
		var al model.Airline
		if err := lrows.Scan(&al.ID, &al.Name, &al.Code); err != nil {
			return err
		}
		data.Airlines[al.ID] = al
	}
	return lrows.Err()
}

// loadAircraft fetches the aircraft configurations referenced by the
// window's flights. Seat inventories are stored as comma-separated seat
// numbers per class.
func (r *FlightRepo) loadAircraft(ctx context.Context, ids map[uint64]struct{}, data *WindowData) error {
	q, args := buildInQuery(`SELECT id, name, first_seats, business_seats, economy_seats
	                         FROM aircraft_configurations WHERE id IN `, ids)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		cfg, err := scanAircraftConfig(rows)
		if err != nil {
			return err
		}
		data.Aircraft[cfg.ID] = cfg
	}
	return rows.Err()
}

// GetByID returns a single flight or ErrNotFound.
func (r *FlightRepo) GetByID(ctx context.Context, flightID uint64) (*model.Flight, error) {
	const q = `SELECT id, route_id, aircraft_config_id, departure_time, arrival_time,
	                  terminal, gate,
	                  first_price_cents, business_price_cents, economy_price_cents,
	                  insurance_price_cents, fully_booked
	           FROM flights WHERE id = ?`
	var fl model.Flight
	err := r.db.QueryRowContext(ctx, q, flightID).Scan(&fl.ID, &fl.RouteID, &fl.AircraftConfigID,
		&fl.DepartureTime, &fl.ArrivalTime, &fl.Terminal, &fl.Gate,
		&fl.FirstPriceCents, &fl.BusinessPriceCents,
		&fl.EconomyPriceCents, &fl.InsurancePriceCents, &fl.FullyBooked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fl, nil
}

// GetTx is GetByID inside an existing transaction.
func (r *FlightRepo) GetTx(ctx context.Context, tx *sql.Tx, flightID uint64) (*model.Flight, error) {
	const q = `SELECT id, route_id, aircraft_config_id, departure_time, arrival_time,
	                  terminal, gate,
	                  first_price_cents, business_price_cents, economy_price_cents,
	                  insurance_price_cents, fully_booked
	           FROM flights WHERE id = ?`
	var fl model.Flight
	err := tx.QueryRowContext(ctx, q, flightID).Scan(&fl.ID, &fl.RouteID, &fl.AircraftConfigID,
		&fl.DepartureTime, &fl.ArrivalTime, &fl.Terminal, &fl.Gate,
		&fl.FirstPriceCents, &fl.BusinessPriceCents,
		&fl.EconomyPriceCents, &fl.InsurancePriceCents, &fl.FullyBooked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fl, nil
}

// ConfigForFlightTx returns the aircraft configuration operating a flight,
// inside an existing transaction. ErrNotFound when either row is missing.
func (r *FlightRepo) ConfigForFlightTx(ctx context.Context, tx *sql.Tx, flightID uint64) (*model.AircraftConfiguration, error) {
	const q = `SELECT ac.id, ac.name, ac.first_seats, ac.business_seats, ac.economy_seats
	           FROM aircraft_configurations ac
	           JOIN flights f ON f.aircraft_config_id = ac.id
	           WHERE f.id = ?`
	row := tx.QueryRowContext(ctx, q, flightID)
	cfg, err := scanAircraftConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RecomputeFullyBookedTx recounts a flight's confirmed legs against its
// aircraft's total seat count and persists the flag, all inside the
// caller's transaction. It must run after every leg insert or delete so
// the cached flag never needs read-path recomputation.
func (r *FlightRepo) RecomputeFullyBookedTx(ctx context.Context, tx *sql.Tx, flightID uint64) error {
	cfg, err := r.ConfigForFlightTx(ctx, tx, flightID)
	if err != nil {
		return err
	}
	var legs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_flights WHERE flight_id = ?`, flightID).Scan(&legs); err != nil {
		return err
	}
	full := 0
	if legs >= cfg.TotalSeats() {
		full = 1
	}
	_, err = tx.ExecContext(ctx, `UPDATE flights SET fully_booked = ? WHERE id = ?`, full, flightID)
	return err
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAircraftConfig(s scanner) (model.AircraftConfiguration, error) {
	var cfg model.AircraftConfiguration
	var first, business, economy string
	if err := s.Scan(&cfg.ID, &cfg.Name, &first, &business, &economy); err != nil {
		return model.AircraftConfiguration{}, err
	}
	cfg.FirstSeats = splitSeats(first)
	cfg.BusinessSeats = splitSeats(business)
	cfg.EconomySeats = splitSeats(economy)
	return cfg, nil
}

// splitSeats parses a comma-separated seat list, dropping empty entries.
func splitSeats(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildInQuery appends an IN (...) clause with one placeholder per id.
func buildInQuery(prefix string, ids map[uint64]struct{}) (string, []interface{}) {
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	return prefix + "(" + strings.Join(placeholders, ",") + ")", args
}
