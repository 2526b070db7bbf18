package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) interfaces.UserRepository {
	return &UserRepository{db: db}
}

const userSelectColumns = `id, username, email, photo, role, rating_avg, rating_count, active, created_at`

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := "SELECT " + userSelectColumns + " FROM users WHERE id = $1"

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.QueryError{Store: "postgres", Op: "find user by id", Err: sql.ErrNoRows}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find user by id", Err: err}
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email models.Email) (*models.User, error) {
	query := "SELECT " + userSelectColumns + " FROM users WHERE email = $1"

	user, err := scanUser(r.db.QueryRowContext(ctx, query, string(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.QueryError{Store: "postgres", Op: "find user by email", Err: sql.ErrNoRows}
		}
		return nil, &models.QueryError{Store: "postgres", Op: "find user by email", Err: err}
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
	INSERT INTO users (username, email, password_hash, photo, role, rating_avg, rating_count, active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING id, created_at`

	var photo sql.NullString
	if user.Photo != nil {
		photo = sql.NullString{String: *user.Photo, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		string(user.Email),
		user.PasswordHash,
		photo,
		user.Role,
		user.RatingAvg,
		user.RatingCount,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return &models.PersistenceError{Entity: "user", ID: user.Username, Err: err}
	}

	return nil
}

func (r *UserRepository) UpdateRating(ctx context.Context, userID int64, avg float64, count int64) error {
	query := "UPDATE users SET rating_avg = $1, rating_count = $2 WHERE id = $3"

	result, err := r.db.ExecContext(ctx, query, avg, count, userID)
	if err != nil {
		return &models.PersistenceError{Entity: "user", ID: fmt.Sprintf("%d", userID), Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &models.PersistenceError{Entity: "user", ID: fmt.Sprintf("%d", userID), Err: err}
	}
	if affected == 0 {
		return &models.PersistenceError{Entity: "user", ID: fmt.Sprintf("%d", userID), Err: sql.ErrNoRows}
	}

	return nil
}

// scanUser never reads the stored credential; callers get the fixed dummy
// hash so password material cannot leak through ride or review payloads.
func scanUser(s rowScanner) (*models.User, error) {
	var user models.User
	var photo sql.NullString

	err := s.Scan(
		&user.ID, &user.Username, &user.Email, &photo, &user.Role,
		&user.RatingAvg, &user.RatingCount, &user.Active, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = models.DummyPasswordHash
	if photo.Valid {
		user.Photo = &photo.String
	}

	return &user, nil
}
