package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
)

type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) interfaces.LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) FindByID(ctx context.Context, id int64) (*models.Location, error) {
	query := "SELECT id, name, latitude, longitude FROM locations WHERE id = $1"

	location, err := scanLocation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.QueryError{Store: "postgres", Op: "find location by id", Err: sql.ErrNoRows}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find location by id", Err: err}
	}

	return location, nil
}

func (r *LocationRepository) FindByName(ctx context.Context, name string) (*models.Location, error) {
	query := "SELECT id, name, latitude, longitude FROM locations WHERE LOWER(name) = LOWER($1)"

	location, err := scanLocation(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.QueryError{Store: "postgres", Op: "find location by name", Err: sql.ErrNoRows}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find location by name", Err: err}
	}

	return location, nil
}

func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	query := "SELECT id, name, latitude, longitude FROM locations ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &models.QueryError{Store: "postgres", Op: "list locations", Err: err}
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, &models.QueryError{Store: "postgres", Op: "scan location", Err: err}
		}
		locations = append(locations, location)
	}

	return locations, rows.Err()
}

func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	query := `
	INSERT INTO locations (name, latitude, longitude)
	VALUES ($1, $2, $3)
	RETURNING id`

	var lat, lng sql.NullFloat64
	if location.Latitude != nil {
		lat = sql.NullFloat64{Float64: *location.Latitude, Valid: true}
	}
	if location.Longitude != nil {
		lng = sql.NullFloat64{Float64: *location.Longitude, Valid: true}
	}

	if err := r.db.QueryRowContext(ctx, query, location.Name, lat, lng).Scan(&location.ID); err != nil {
		return &models.PersistenceError{Entity: "location", ID: location.Name, Err: err}
	}

	return nil
}

func scanLocation(s rowScanner) (*models.Location, error) {
	var location models.Location
	var lat, lng sql.NullFloat64

	if err := s.Scan(&location.ID, &location.Name, &lat, &lng); err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		location.Latitude = &lat.Float64
		location.Longitude = &lng.Float64
	}

	return &location, nil
}
