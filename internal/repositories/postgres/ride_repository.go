package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/utils"
)

// rideRow is the typed projection of one rides row joined with its departure
// and arrival locations, the driver and the optional vehicle.
type rideRow struct {
	ID              int64
	DepartureTime   time.Time
	ArrivalTime     time.Time
	PriceAmount     float64
	PriceCurrency   string
	TotalSeats      int
	AvailableSeats  int
	CarbonFootprint float64
	Status          string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	DepID int64
	DepName string
	DepLat  sql.NullFloat64
	DepLng  sql.NullFloat64

	ArrID   int64
	ArrName string
	ArrLat  sql.NullFloat64
	ArrLng  sql.NullFloat64

	DriverID          int64
	DriverUsername    string
	DriverEmail       string
	DriverPhoto       sql.NullString
	DriverRole        string
	DriverRatingAvg   float64
	DriverRatingCount int64
	DriverActive      bool
	DriverCreatedAt   time.Time

	VehicleID       sql.NullInt64
	VehicleMake     sql.NullString
	VehicleModel    sql.NullString
	VehicleColor    sql.NullString
	VehiclePlate    sql.NullString
	VehicleSeats    sql.NullInt64
	VehicleElectric sql.NullBool
	VehicleCreated  sql.NullTime
}

const rideSelectColumns = `
	r.id, r.departure_time, r.arrival_time, r.price_amount, r.price_currency,
	r.total_seats, r.available_seats, r.carbon_footprint, r.status, r.version,
	r.created_at, r.updated_at,
	d.id, d.name, d.latitude, d.longitude,
	a.id, a.name, a.latitude, a.longitude,
	u.id, u.username, u.email, u.photo, u.role, u.rating_avg, u.rating_count, u.active, u.created_at,
	v.id, v.make, v.model, v.color, v.license_plate, v.seats, v.electric, v.created_at`

const rideFromClause = `
	FROM rides r
	JOIN locations d ON d.id = r.departure_id
	JOIN locations a ON a.id = r.arrival_id
	JOIN users u ON u.id = r.driver_id
	LEFT JOIN vehicles v ON v.id = r.vehicle_id`

type RideRepository struct {
	db *sql.DB
}

func NewRideRepository(db *sql.DB) interfaces.RideRepository {
	return &RideRepository{db: db}
}

func (r *RideRepository) FindByID(ctx context.Context, id int64) (*models.Ride, error) {
	query := "SELECT" + rideSelectColumns + rideFromClause + " WHERE r.id = $1"

	var row rideRow
	if err := scanRideRow(r.db.QueryRowContext(ctx, query, id), &row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.RideNotFoundError{RideID: id}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find ride by id", Err: err}
	}

	ride, err := row.toModel()
	if err != nil {
		return nil, &models.QueryError{Store: "postgres", Op: "decode ride row", Err: err}
	}

	reservations, err := r.loadReservations(ctx, id)
	if err != nil {
		return nil, err
	}
	ride.Reservations = reservations

	return ride, nil
}

func (r *RideRepository) FindByDriver(ctx context.Context, driverID int64) ([]*models.Ride, error) {
	query := "SELECT" + rideSelectColumns + rideFromClause +
		" WHERE r.driver_id = $1 ORDER BY r.departure_time DESC"

	return r.queryRides(ctx, "find rides by driver", query, driverID)
}

func (r *RideRepository) FindAvailableRides(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	where := " WHERE r.status = $1 AND r.departure_time > NOW() AND r.available_seats > 0"

	var total int64
	countQuery := "SELECT COUNT(*)" + rideFromClause + where
	if err := r.db.QueryRowContext(ctx, countQuery, models.RideStatusPlanned).Scan(&total); err != nil {
		return nil, 0, &models.QueryError{Store: "postgres", Op: "count available rides", Err: err}
	}

	query := "SELECT" + rideSelectColumns + rideFromClause + where +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $2 OFFSET $3", rideSortColumn(params.Sort), sortDirection(params.Order))

	rides, err := r.queryRides(ctx, "find available rides", query,
		models.RideStatusPlanned, params.GetLimit(), params.GetOffset())
	if err != nil {
		return nil, 0, err
	}

	return rides, total, nil
}

func (r *RideRepository) FindPopularRides(ctx context.Context, limit int) ([]*models.Ride, error) {
	query := "SELECT" + rideSelectColumns + rideFromClause + `
	WHERE r.status = $1 AND r.departure_time > NOW()
	ORDER BY (r.total_seats - r.available_seats) DESC, r.departure_time ASC
	LIMIT $2`

	return r.queryRides(ctx, "find popular rides", query, models.RideStatusPlanned, limit)
}

func (r *RideRepository) SearchRides(ctx context.Context, filters *interfaces.RideSearchFilters, sortBy interfaces.RideSortBy, page, limit int) ([]*models.Ride, error) {
	where, args := buildSearchPredicate(filters)

	if limit < 1 {
		limit = utils.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	orderColumn := "r.departure_time"
	if sortBy == interfaces.RideSortByPrice {
		orderColumn = "r.price_amount"
	}

	args = append(args, limit, (page-1)*limit)
	query := "SELECT" + rideSelectColumns + rideFromClause + where +
		fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d", orderColumn, len(args)-1, len(args))

	return r.queryRides(ctx, "search rides", query, args...)
}

func (r *RideRepository) CountSearchResults(ctx context.Context, filters *interfaces.RideSearchFilters) (int64, error) {
	where, args := buildSearchPredicate(filters)

	var total int64
	query := "SELECT COUNT(*)" + rideFromClause + where
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, &models.QueryError{Store: "postgres", Op: "count search results", Err: err}
	}

	return total, nil
}

// buildSearchPredicate is shared by SearchRides and CountSearchResults so the
// page content and the reported total always agree. The max-price filter is
// applied here, in SQL, not after pagination.
func buildSearchPredicate(filters *interfaces.RideSearchFilters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	addClause := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filters != nil {
		if filters.DepartureID != nil {
			addClause("r.departure_id = $%d", *filters.DepartureID)
		}
		if filters.ArrivalID != nil {
			addClause("r.arrival_id = $%d", *filters.ArrivalID)
		}
		if filters.Date != nil {
			dayStart := time.Date(filters.Date.Year(), filters.Date.Month(), filters.Date.Day(), 0, 0, 0, 0, filters.Date.Location())
			addClause("r.departure_time >= $%d", dayStart)
			addClause("r.departure_time < $%d", dayStart.Add(24*time.Hour))
		}
		if filters.MaxPrice != nil {
			addClause("r.price_amount <= $%d", *filters.MaxPrice)
		}
		if filters.Status != nil {
			addClause("r.status = $%d", *filters.Status)
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Save upserts the aggregate. Updates replace the reservation rows and bump
// the version column inside one transaction; a failed version check surfaces
// as models.ErrVersionConflict so two bookings racing for the last seat can
// never both win.
func (r *RideRepository) Save(ctx context.Context, ride *models.Ride) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.ConnectionError{Store: "postgres", Err: err}
	}
	defer tx.Rollback()

	if ride.ID == 0 {
		err = r.insertRide(ctx, tx, ride)
	} else {
		err = r.updateRide(ctx, tx, ride)
	}
	if err != nil {
		return err
	}

	if err := r.replaceReservations(ctx, tx, ride); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}

	return nil
}

func (r *RideRepository) insertRide(ctx context.Context, tx *sql.Tx, ride *models.Ride) error {
	query := `
	INSERT INTO rides (driver_id, vehicle_id, departure_id, arrival_id, departure_time, arrival_time,
		price_amount, price_currency, total_seats, available_seats, carbon_footprint, status, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, NOW(), NOW())
	RETURNING id, created_at, updated_at`

	var vehicleID sql.NullInt64
	if ride.Vehicle != nil {
		vehicleID = sql.NullInt64{Int64: ride.Vehicle.ID, Valid: true}
	}

	err := tx.QueryRowContext(ctx, query,
		ride.Driver.ID,
		vehicleID,
		ride.Departure.ID,
		ride.Arrival.ID,
		ride.DepartureTime,
		ride.ArrivalTime,
		ride.PricePerSeat.Amount(),
		ride.PricePerSeat.Currency(),
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.CarbonFootprint,
		ride.Status,
	).Scan(&ride.ID, &ride.CreatedAt, &ride.UpdatedAt)
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: "new", Err: err}
	}

	ride.Version = 1
	return nil
}

func (r *RideRepository) updateRide(ctx context.Context, tx *sql.Tx, ride *models.Ride) error {
	query := `
	UPDATE rides
	SET departure_time = $1, arrival_time = $2, price_amount = $3, price_currency = $4,
		total_seats = $5, available_seats = $6, carbon_footprint = $7, status = $8,
		version = version + 1, updated_at = NOW()
	WHERE id = $9 AND version = $10`

	result, err := tx.ExecContext(ctx, query,
		ride.DepartureTime,
		ride.ArrivalTime,
		ride.PricePerSeat.Amount(),
		ride.PricePerSeat.Currency(),
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.CarbonFootprint,
		ride.Status,
		ride.ID,
		ride.Version,
	)
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}

	if affected == 0 {
		var current int
		err := tx.QueryRowContext(ctx, "SELECT version FROM rides WHERE id = $1", ride.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RideNotFoundError{RideID: ride.ID}
		}
		if err != nil {
			return &models.QueryError{Store: "postgres", Op: "recheck ride version", Err: err}
		}
		return models.ErrVersionConflict
	}

	ride.Version++
	return nil
}

func (r *RideRepository) replaceReservations(ctx context.Context, tx *sql.Tx, ride *models.Ride) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM ride_reservations WHERE ride_id = $1", ride.ID); err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}

	if len(ride.Reservations) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO ride_reservations (ride_id, passenger_id, seats, reference, created_at)
	VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}
	defer stmt.Close()

	for i := range ride.Reservations {
		res := &ride.Reservations[i]
		res.RideID = ride.ID
		if _, err := stmt.ExecContext(ctx, ride.ID, res.PassengerID, res.Seats, res.Reference, res.CreatedAt); err != nil {
			return &models.PersistenceError{Entity: "reservation", ID: res.Reference, Err: err}
		}
	}

	return nil
}

// Delete removes the ride row only. Reservations and review documents stay
// behind keyed by ride id; orphaning them is the documented trade-off of the
// split between the two stores.
func (r *RideRepository) Delete(ctx context.Context, ride *models.Ride) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rides WHERE id = $1", ride.ID)
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &models.PersistenceError{Entity: "ride", ID: fmt.Sprintf("%d", ride.ID), Err: err}
	}
	if affected == 0 {
		return &models.RideNotFoundError{RideID: ride.ID}
	}

	return nil
}

func (r *RideRepository) loadReservations(ctx context.Context, rideID int64) ([]models.Reservation, error) {
	query := `
	SELECT id, ride_id, passenger_id, seats, reference, created_at
	FROM ride_reservations
	WHERE ride_id = $1
	ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, &models.QueryError{Store: "postgres", Op: "load reservations", Err: err}
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.ID, &res.RideID, &res.PassengerID, &res.Seats, &res.Reference, &res.CreatedAt); err != nil {
			return nil, &models.QueryError{Store: "postgres", Op: "scan reservation", Err: err}
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

func (r *RideRepository) queryRides(ctx context.Context, op, query string, args ...interface{}) ([]*models.Ride, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.QueryError{Store: "postgres", Op: op, Err: err}
	}
	defer rows.Close()

	var rides []*models.Ride
	for rows.Next() {
		var row rideRow
		if err := scanRideRow(rows, &row); err != nil {
			return nil, &models.QueryError{Store: "postgres", Op: op, Err: err}
		}

		ride, err := row.toModel()
		if err != nil {
			return nil, &models.QueryError{Store: "postgres", Op: op, Err: err}
		}
		rides = append(rides, ride)
	}

	return rides, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRideRow(s rowScanner, row *rideRow) error {
	return s.Scan(
		&row.ID, &row.DepartureTime, &row.ArrivalTime, &row.PriceAmount, &row.PriceCurrency,
		&row.TotalSeats, &row.AvailableSeats, &row.CarbonFootprint, &row.Status, &row.Version,
		&row.CreatedAt, &row.UpdatedAt,
		&row.DepID, &row.DepName, &row.DepLat, &row.DepLng,
		&row.ArrID, &row.ArrName, &row.ArrLat, &row.ArrLng,
		&row.DriverID, &row.DriverUsername, &row.DriverEmail, &row.DriverPhoto, &row.DriverRole,
		&row.DriverRatingAvg, &row.DriverRatingCount, &row.DriverActive, &row.DriverCreatedAt,
		&row.VehicleID, &row.VehicleMake, &row.VehicleModel, &row.VehicleColor,
		&row.VehiclePlate, &row.VehicleSeats, &row.VehicleElectric, &row.VehicleCreated,
	)
}

func (row *rideRow) toModel() (*models.Ride, error) {
	price, err := models.NewMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("invalid price on ride %d: %w", row.ID, err)
	}

	ride := &models.Ride{
		ID:              row.ID,
		Departure:       locationFromRow(row.DepID, row.DepName, row.DepLat, row.DepLng),
		Arrival:         locationFromRow(row.ArrID, row.ArrName, row.ArrLat, row.ArrLng),
		DepartureTime:   row.DepartureTime,
		ArrivalTime:     row.ArrivalTime,
		PricePerSeat:    price,
		TotalSeats:      row.TotalSeats,
		AvailableSeats:  row.AvailableSeats,
		CarbonFootprint: row.CarbonFootprint,
		Status:          models.RideStatus(row.Status),
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}

	driver := &models.User{
		ID:           row.DriverID,
		Username:     row.DriverUsername,
		Email:        models.Email(row.DriverEmail),
		PasswordHash: models.DummyPasswordHash,
		Role:         models.UserRole(row.DriverRole),
		RatingAvg:    row.DriverRatingAvg,
		RatingCount:  row.DriverRatingCount,
		Active:       row.DriverActive,
		CreatedAt:    row.DriverCreatedAt,
	}
	if row.DriverPhoto.Valid {
		driver.Photo = &row.DriverPhoto.String
	}
	ride.Driver = driver

	if row.VehicleID.Valid {
		ride.Vehicle = &models.Vehicle{
			ID:           row.VehicleID.Int64,
			DriverID:     row.DriverID,
			Make:         row.VehicleMake.String,
			Model:        row.VehicleModel.String,
			Color:        row.VehicleColor.String,
			LicensePlate: row.VehiclePlate.String,
			Seats:        int(row.VehicleSeats.Int64),
			Electric:     row.VehicleElectric.Bool,
			CreatedAt:    row.VehicleCreated.Time,
		}
	}

	return ride, nil
}

func locationFromRow(id int64, name string, lat, lng sql.NullFloat64) *models.Location {
	location := &models.Location{ID: id, Name: name}
	if lat.Valid && lng.Valid {
		location.Latitude = &lat.Float64
		location.Longitude = &lng.Float64
	}
	return location
}

func rideSortColumn(sort string) string {
	switch sort {
	case "price":
		return "r.price_amount"
	case "created_at":
		return "r.created_at"
	default:
		return "r.departure_time"
	}
}

func sortDirection(order string) string {
	if order == "desc" {
		return "DESC"
	}
	return "ASC"
}
