package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ecoride/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedRide() *models.Ride {
	return &models.Ride{
		ID:             42,
		Driver:         &models.User{ID: 1, Username: "jean", Role: models.UserRoleDriver},
		Departure:      &models.Location{ID: 10, Name: "Paris"},
		Arrival:        &models.Location{ID: 20, Name: "Lyon"},
		DepartureTime:  time.Now().Add(24 * time.Hour),
		ArrivalTime:    time.Now().Add(32 * time.Hour),
		PricePerSeat:   models.MustMoney(25, "EUR"),
		TotalSeats:     3,
		AvailableSeats: 3,
		Status:         models.RideStatusPlanned,
		Version:        1,
	}
}

func TestSave_VersionConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM rides").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
	mock.ExpectRollback()

	err = repo.Save(context.Background(), savedRide())

	assert.ErrorIs(t, err, models.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RideDeletedUnderneath(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM rides").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err = repo.Save(context.Background(), savedRide())

	var notFoundErr *models.RideNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A broken re-check must not masquerade as a lost race.
func TestSave_VersionRecheckFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM rides").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = repo.Save(context.Background(), savedRide())

	var queryErr *models.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.NotErrorIs(t, err, models.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
