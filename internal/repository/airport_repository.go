package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// AirportRepo resolves search endpoints. Searches may name either a single
// airport or a whole city; a city expands to all of its airports.
type AirportRepo struct {
	db *sql.DB
}

// NewAirportRepo returns an AirportRepo bound to the provided database.
func NewAirportRepo(db *sql.DB) *AirportRepo { return &AirportRepo{db: db} }

// Location type discriminators accepted by the search endpoints.
const (
	LocationAirport = "airport"
	LocationCity    = "city"
)

// ResolveLocation expands a search endpoint into concrete airport ids.
// For LocationAirport it verifies the airport exists; for LocationCity it
// returns every airport in the city. ErrNotFound when nothing matches.
func (r *AirportRepo) ResolveLocation(ctx context.Context, id uint64, locType string) ([]uint64, error) {
	var q string
	switch locType {
	case LocationAirport:
		q = `SELECT id FROM airports WHERE id = ?`
	case LocationCity:
		q = `SELECT id FROM airports WHERE city_id = ?`
	default:
		return nil, ErrNotFound
	}
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var airportID uint64
		if err := rows.Scan(&airportID); err != nil {
			return nil, err
		}
		ids = append(ids, airportID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return ids, nil
}

// GetByID returns a single airport or ErrNotFound.
func (r *AirportRepo) GetByID(ctx context.Context, airportID uint64) (*model.Airport, error) {
	const q = `SELECT id, name, iata_code, icao_code, latitude, longitude, city_id
	           FROM airports WHERE id = ?`
	var ap model.Airport
	err := r.db.QueryRowContext(ctx, q, airportID).Scan(&ap.ID, &ap.Name, &ap.IATA, &ap.ICAO,
		&ap.Latitude, &ap.Longitude, &ap.CityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}
