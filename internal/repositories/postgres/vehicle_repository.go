package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
)

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) interfaces.VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleSelectColumns = `id, driver_id, make, model, color, license_plate, seats, electric, created_at`

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := "SELECT " + vehicleSelectColumns + " FROM vehicles WHERE id = $1"

	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.QueryError{Store: "postgres", Op: "find vehicle by id", Err: sql.ErrNoRows}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find vehicle by id", Err: err}
	}

	return vehicle, nil
}

func (r *VehicleRepository) FindByDriver(ctx context.Context, driverID int64) ([]*models.Vehicle, error) {
	query := "SELECT " + vehicleSelectColumns + " FROM vehicles WHERE driver_id = $1 ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, &models.QueryError{Store: "postgres", Op: "find vehicles by driver", Err: err}
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, &models.QueryError{Store: "postgres", Op: "scan vehicle", Err: err}
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
	INSERT INTO vehicles (driver_id, make, model, color, license_plate, seats, electric, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.DriverID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Color,
		vehicle.LicensePlate,
		vehicle.Seats,
		vehicle.Electric,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)
	if err != nil {
		return &models.PersistenceError{Entity: "vehicle", ID: vehicle.LicensePlate, Err: err}
	}

	return nil
}

func scanVehicle(s rowScanner) (*models.Vehicle, error) {
	var vehicle models.Vehicle

	err := s.Scan(
		&vehicle.ID, &vehicle.DriverID, &vehicle.Make, &vehicle.Model, &vehicle.Color,
		&vehicle.LicensePlate, &vehicle.Seats, &vehicle.Electric, &vehicle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}
